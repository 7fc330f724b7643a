package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"folderr-backend/internal/config"
	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
)

func generateToken(userID uint) (string, error) {
	cfg := config.Get()
	expiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		expiration = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// Register creates an account and binds any shares that were pending on the
// email address.
func Register(c *gin.Context) {
	var input struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	db := database.GetDB()
	user := models.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	if err := models.BindPendingShares(db, &user); err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to bind pending shares")
	}

	token, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login authenticates with email/password, plus a TOTP code when the
// account has an active authenticator.
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		OTPCode  string `json:"otp_code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	user, err := models.GetUserByEmail(db, input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	requires2FA, err := models.HasActive2FA(db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check 2FA"})
		return
	}
	if requires2FA {
		if input.OTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "OTP code required", "requires_2fa": true})
			return
		}
		if !verifyAnyTOTP(db, user.ID, input.OTPCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid OTP code"})
			return
		}
	}

	token, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func verifyAnyTOTP(db *gorm.DB, userID uint, code string) bool {
	var totps []models.TOTP
	if err := db.Where("user_id = ? AND active = ?", userID, true).Find(&totps).Error; err != nil {
		return false
	}
	for i := range totps {
		if totps[i].Verify(code) {
			return true
		}
	}
	return false
}

// EnrollTOTP starts a 2FA enrollment and returns the provisioning URI and
// backup codes. The authenticator stays inactive until the first code is
// verified.
func EnrollTOTP(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	totp, err := models.NewTOTP(user, input.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authenticator"})
		return
	}
	if err := db.Create(totp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save authenticator"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":               totp.ID,
		"provisioning_uri": totp.ProvisioningURI(user.Email),
		"backup_codes":     totp.BackupCodes["codes"],
	})
}

// ActivateTOTP verifies the first code and switches the authenticator on.
func ActivateTOTP(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	userID, _ := c.Get("user_id")

	var totp models.TOTP
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&totp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Authenticator not found"})
		return
	}
	if !totp.Verify(input.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code"})
		return
	}
	if err := db.Model(&totp).Update("active", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate authenticator"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

// DeleteTOTP removes an authenticator.
func DeleteTOTP(c *gin.Context) {
	db := database.GetDB()
	userID, _ := c.Get("user_id")

	result := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&models.TOTP{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete authenticator"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Authenticator not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authenticator removed"})
}

// currentUser loads the authenticated user, writing the error response
// itself when the account is gone.
func currentUser(c *gin.Context) *models.User {
	userID, _ := c.Get("user_id")
	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		}
		return nil
	}
	return &user
}
