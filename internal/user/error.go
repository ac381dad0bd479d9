package user

import "storefront-be/internal/apperror"

var (
	ErrUserExists           = apperror.Validation("user already exists")
	ErrUserNotFound         = apperror.NotFound("user not found")
	ErrInvalidCredentials   = apperror.Authentication("invalid email or password")
	ErrRefreshTokenRequired = apperror.Validation("refresh token is required")
	ErrInvalidRefreshToken  = apperror.Authentication("invalid refresh token")
	ErrUpdateOtherAdmin     = apperror.Authorization("admins cannot update other admins")
	ErrChangeOwnRole        = apperror.Validation("admins cannot change their own role")
	ErrDeleteSelf           = apperror.Validation("you cannot delete your own admin account")
	ErrDeleteOtherAdmin     = apperror.Authorization("admins cannot delete other admins")
	ErrInvalidRole          = apperror.Validation("role must be customer or admin")
)
