package auth

import (
	"context"
	"strings"

	"finance-tracker/internal/domain"
)

// Guard turns an Authorization header into the caller identity.
type Guard struct {
	tokens *TokenService
}

func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authorize requires a "Bearer <token>" header. Errors wrap ErrUnauthenticated
// unless the store itself failed.
func (g *Guard) Authorize(ctx context.Context, header string) (domain.Identity, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return domain.Identity{}, ErrInvalidToken
	}

	user, err := g.tokens.Verify(ctx, raw)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: user.ID, Username: user.Username}, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
