package router

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getMembership 当前用户的会员档案。
func getMembership(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		var m model.UserMembership
		err := db.Preload("Tier").Where("user_id = ?", user.ID).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "no membership record"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, m)
	}
}

// listMembershipTiers 等级阶梯。
func listMembershipTiers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tiers []model.MembershipTier
		if err := db.Order("level ASC").Find(&tiers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, tiers)
	}
}
