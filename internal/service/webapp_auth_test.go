package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/FanzeeApp/sotvolbackend/internal/apperr"
)

const testBotToken = "12345:test-token"

// signFields reproduces the client-side signing so tests can mint valid
// payloads.
func signFields(fields map[string]string, botToken string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func signedInitData(userJSON string) string {
	fields := map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAF3",
		"user":      userJSON,
	}
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	v.Set("hash", signFields(fields, testBotToken))
	return v.Encode()
}

func TestValidateWebAppData(t *testing.T) {
	fields := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"A"}`,
	}
	hash := signFields(fields, testBotToken)

	if !ValidateWebAppData(fields, hash, testBotToken) {
		t.Fatal("valid payload rejected")
	}
	if ValidateWebAppData(fields, hash, "other-token") {
		t.Fatal("payload accepted with wrong token")
	}
	if ValidateWebAppData(fields, "", testBotToken) {
		t.Fatal("payload accepted with empty hash")
	}

	fields["user"] = `{"id":43,"first_name":"A"}`
	if ValidateWebAppData(fields, hash, testBotToken) {
		t.Fatal("tampered payload accepted")
	}
}

func TestVerifyInitData(t *testing.T) {
	auth := NewAuthService(testBotToken, nil, false, nil)

	id, ok := auth.VerifyInitData(signedInitData(`{"id":42,"first_name":"A"}`))
	if !ok || id != 42 {
		t.Fatalf("VerifyInitData() = (%d, %v), want (42, true)", id, ok)
	}

	if _, ok := auth.VerifyInitData(""); ok {
		t.Fatal("empty init data accepted")
	}
	if _, ok := auth.VerifyInitData("auth_date=1&hash=deadbeef"); ok {
		t.Fatal("forged init data accepted")
	}
}

type fakeAdminStore struct {
	admins map[int64]bool
	err    error
}

func (f *fakeAdminStore) IsAdmin(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[id], nil
}

func TestAuthorize(t *testing.T) {
	store := &fakeAdminStore{admins: map[int64]bool{100: true}}
	auth := NewAuthService(testBotToken, []int64{7}, false, store)
	ctx := context.Background()

	t.Run("bootstrap admin via signed payload", func(t *testing.T) {
		id, err := auth.Authorize(ctx, signedInitData(`{"id":7}`), 0)
		if err != nil || id != 7 {
			t.Fatalf("Authorize() = (%d, %v), want (7, nil)", id, err)
		}
	})

	t.Run("persisted admin via fallback id", func(t *testing.T) {
		id, err := auth.Authorize(ctx, "", 100)
		if err != nil || id != 100 {
			t.Fatalf("Authorize() = (%d, %v), want (100, nil)", id, err)
		}
	})

	t.Run("valid identity but not admin", func(t *testing.T) {
		_, err := auth.Authorize(ctx, signedInitData(`{"id":55}`), 0)
		if got := apperr.StatusOf(err); got != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", got)
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := auth.Authorize(ctx, "", 0)
		if got := apperr.StatusOf(err); got != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", got)
		}
	})

	t.Run("invalid payload falls back to 401 without id", func(t *testing.T) {
		_, err := auth.Authorize(ctx, "auth_date=1&hash=bad", 0)
		if got := apperr.StatusOf(err); got != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", got)
		}
	})
}

func TestAuthorize_DevBypass(t *testing.T) {
	auth := NewAuthService(testBotToken, nil, true, &fakeAdminStore{})
	if _, err := auth.Authorize(context.Background(), "", 0); err != nil {
		t.Fatalf("dev bypass should admit unauthenticated caller, got %v", err)
	}

	// A supplied identity still goes through the membership check.
	_, err := auth.Authorize(context.Background(), "", 500)
	if got := apperr.StatusOf(err); got != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", got)
	}
}
