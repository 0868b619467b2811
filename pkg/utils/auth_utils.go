package utils

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"asset-system/pkg/contextkeys"
	apperrors "asset-system/pkg/errors"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ActorFromContext extracts the authenticated user id put there by the auth
// middleware.
func ActorFromContext(ctx context.Context) (uint64, error) {
	actorID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || actorID == 0 {
		return 0, apperrors.ErrInvalidUserID
	}
	return actorID, nil
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	return role
}

// BranchFromContext extracts the caller's home branch claim. A missing claim
// is rejected here rather than surfacing later as a foreign-key failure.
func BranchFromContext(ctx context.Context) (uint64, error) {
	branchID, ok := ctx.Value(contextkeys.BranchIDKey).(uint64)
	if !ok || branchID == 0 {
		return 0, apperrors.ErrInvalidBranchID
	}
	return branchID, nil
}
