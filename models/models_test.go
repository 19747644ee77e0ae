package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stylefit/tryon-server/models"
)

func TestValidCategory(t *testing.T) {
	for _, c := range models.GarmentCategories {
		assert.True(t, models.ValidCategory(c), c)
	}
	assert.False(t, models.ValidCategory("hat"))
	assert.False(t, models.ValidCategory(""))
	assert.False(t, models.ValidCategory("Shirt")) // case sensitive
}

func TestValidGarmentGender(t *testing.T) {
	assert.True(t, models.ValidGarmentGender("male"))
	assert.True(t, models.ValidGarmentGender("female"))
	assert.True(t, models.ValidGarmentGender("unisex"))
	assert.False(t, models.ValidGarmentGender("other"))
}

func TestValidProfileFields(t *testing.T) {
	assert.True(t, models.ValidProfileGender("other"))
	assert.False(t, models.ValidProfileGender("unisex"))

	assert.True(t, models.ValidBodyType("athletic"))
	assert.False(t, models.ValidBodyType("tall"))
}

func TestValidAuditAction(t *testing.T) {
	assert.True(t, models.ValidAuditAction(models.ActionTryOnRequest))
	assert.True(t, models.ValidAuditAction(models.ActionUserBlock))
	assert.False(t, models.ValidAuditAction("made_up_action"))
	assert.False(t, models.ValidAuditAction(""))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&models.User{Role: models.RoleAdmin}).IsAdmin())
	assert.False(t, (&models.User{Role: models.RoleUser}).IsAdmin())
	assert.False(t, (&models.User{}).IsAdmin())
}
