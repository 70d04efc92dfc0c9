package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
)

// AdminStore is the persisted admin membership lookup.
type AdminStore interface {
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}

// AuthService is the admin authorization gate. The bootstrap set comes from
// configuration and is immutable for the process lifetime; the store holds
// admins granted at runtime.
type AuthService struct {
	botToken  string
	bootstrap map[int64]struct{}
	devBypass bool
	admins    AdminStore
}

func NewAuthService(botToken string, bootstrapIDs []int64, devBypass bool, admins AdminStore) *AuthService {
	bs := make(map[int64]struct{}, len(bootstrapIDs))
	for _, id := range bootstrapIDs {
		bs[id] = struct{}{}
	}
	return &AuthService{
		botToken:  botToken,
		bootstrap: bs,
		devBypass: devBypass,
		admins:    admins,
	}
}

// ValidateWebAppData checks a Telegram WebApp identity payload: the claimed
// hash must equal HMAC-SHA256 over the sorted key=value pairs (newline
// joined, "hash" excluded) keyed with HMAC-SHA256("WebAppData", botToken).
func ValidateWebAppData(fields map[string]string, hash, botToken string) bool {
	if hash == "" {
		return false
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	dataCheck := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheck))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(hash))
}

// VerifyInitData parses the raw init-data query string, validates its
// signature and extracts the Telegram user id. ok is false for a missing,
// malformed or tampered payload.
func (s *AuthService) VerifyInitData(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return 0, false
	}
	fields := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}

	if !ValidateWebAppData(fields, fields["hash"], s.botToken) {
		return 0, false
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(fields["user"]), &user); err != nil || user.ID == 0 {
		return 0, false
	}
	return user.ID, true
}

// IsAdmin checks the bootstrap allow-list first, then the persisted set.
func (s *AuthService) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	if _, ok := s.bootstrap[telegramID]; ok {
		return true, nil
	}
	if s.admins == nil {
		return false, nil
	}
	return s.admins.IsAdmin(ctx, telegramID)
}

// Authorize resolves the acting principal from a signed payload or, failing
// that, a directly supplied id, and requires admin membership. The dev
// bypass admits unauthenticated callers and is only wired up when the
// service's public address is a loopback address.
func (s *AuthService) Authorize(ctx context.Context, initData string, fallbackID int64) (int64, error) {
	id, ok := s.VerifyInitData(initData)
	if !ok {
		if fallbackID == 0 {
			if s.devBypass {
				return 0, nil
			}
			return 0, apperr.Unauthorized("admin credentials required")
		}
		id = fallbackID
	}

	isAdmin, err := s.IsAdmin(ctx, id)
	if err != nil {
		return 0, apperr.Internal("admin lookup failed", err)
	}
	if !isAdmin {
		return 0, apperr.Forbidden("not an admin")
	}
	return id, nil
}
