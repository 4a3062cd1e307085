package model

import "time"

type Profile struct {
	ID           string    `json:"id" bson:"_id" validate:"required,uuid4"`
	FullName     string    `json:"full_name" bson:"full_name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	AvatarURL    string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty" validate:"omitempty,url"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type ProfileUpdate struct {
	FullName  *string `json:"full_name,omitempty" bson:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	AvatarURL *string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty" validate:"omitempty,url"`
}

type SignupRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   *Profile  `json:"profile"`
}
