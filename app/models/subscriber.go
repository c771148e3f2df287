package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Subscriber is one tenant account. Tier holds the entitlement state,
// TrialEndsAt is authoritative while the tier is free_trial and PaidUntil
// once it is paid.
type Subscriber struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required"`
	CompanyName string     `gorm:"type:varchar(200)" json:"company_name" validate:"required,min=2,max=200"`
	Phone       string     `gorm:"type:varchar(50);default:null" json:"phone" validate:"max=50"`
	Role        string     `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	PaymentCode string     `gorm:"uniqueIndex;type:varchar(10)" json:"payment_code"`
	Tier        string     `gorm:"type:varchar(20);default:'free_trial';index" json:"tier"`
	TrialEndsAt *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at"`
	PaidUntil   *time.Time `gorm:"type:timestamp;default:null" json:"paid_until"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// MinPasswordLength is enforced on the plain password before hashing.
const MinPasswordLength = 8

var validate = validator.New()

func (s *Subscriber) Validate() error {
	return validate.Struct(s)
}

// NewSubscriber builds an unsaved subscriber with a hashed password. Tier and
// payment code are assigned by the billing service on registration.
func NewSubscriber(email, password, companyName, phone string) (*Subscriber, error) {
	if err := validate.Var(password, "required,min=8,max=72"); err != nil {
		return nil, err
	}

	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	s := &Subscriber{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    pw,
		CompanyName: strings.TrimSpace(companyName),
		Phone:       strings.TrimSpace(phone),
		Role:        ROLE_USER,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (s *Subscriber) CheckPassword(password string) bool {
	return CheckPasswordHash(password, s.Password)
}

func (s *Subscriber) IsAdmin() bool {
	return s.Role == ROLE_ADMIN
}

// FindSubscriberByEmail looks a subscriber up by normalized email.
func FindSubscriberByEmail(db *gorm.DB, email string) (*Subscriber, error) {
	var s Subscriber
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
