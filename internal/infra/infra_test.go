package infra

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())

	mr.Close()
	_, err = NewRedis(context.Background(), mr.Addr())
	assert.Error(t, err)
}

func TestNewDB(t *testing.T) {
	dsn := os.Getenv("WAYFARER_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYFARER_TEST_DSN not set")
	}
	pool, err := NewDB(context.Background(), dsn)
	require.NoError(t, err)
	pool.Close()
}

func TestFirebaseToken_StringClaim(t *testing.T) {
	tok := &FirebaseToken{UID: "u1", Claims: map[string]interface{}{"device_id": "phone-1", "level": 3}}
	assert.Equal(t, "phone-1", tok.StringClaim("device_id"))
	assert.Empty(t, tok.StringClaim("level"))
	assert.Empty(t, tok.StringClaim("missing"))

	var none *FirebaseToken
	assert.Empty(t, none.StringClaim("device_id"))
}

type fakeIDClient struct {
	plain, revoked int
	err            error
}

func (f *fakeIDClient) VerifyIDToken(_ context.Context, tok string) (*auth.Token, error) {
	f.plain++
	return f.token(tok)
}

func (f *fakeIDClient) VerifyIDTokenAndCheckRevoked(_ context.Context, tok string) (*auth.Token, error) {
	f.revoked++
	return f.token(tok)
}

func (f *fakeIDClient) token(tok string) (*auth.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Token{UID: tok, IssuedAt: 100, Expires: 3700, Claims: map[string]interface{}{"device_id": "phone-1"}}, nil
}

func TestFirebaseVerifier(t *testing.T) {
	client := &fakeIDClient{}
	v := &firebaseVerifier{client: client}
	tok, err := v.VerifyIDToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UID)
	assert.Equal(t, "phone-1", tok.StringClaim("device_id"))
	assert.Equal(t, time.Hour, tok.Expires.Sub(tok.IssuedAt))
	assert.Equal(t, 1, client.plain)

	v.checkRevoked = true
	_, err = v.VerifyIDToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, client.revoked)

	client.err = errors.New("revoked")
	_, err = v.VerifyIDToken(context.Background(), "u1")
	assert.ErrorIs(t, err, client.err)
}
