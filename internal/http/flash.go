package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookieName = "portal_flash"
	flashContextKey = "portal.flash"
	defaultFlashTTL = 5 * time.Minute
)

type flashClaims struct {
	Notices []string `json:"notices"`
	jwt.RegisteredClaims
}

// FlashStore carries one-shot notices to the next rendered page in an HS256 signed cookie.
type FlashStore struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewFlashStore(secret string, secure bool) *FlashStore {
	return &FlashStore{
		secret: []byte(secret),
		ttl:    defaultFlashTTL,
		secure: secure,
	}
}

// Add queues a notice for the current request.
func (f *FlashStore) Add(c *gin.Context, notice string) {
	c.Set(flashContextKey, append(pending(c), notice))
}

// Redirect persists queued notices, including any not yet displayed, and redirects to location.
func (f *FlashStore) Redirect(c *gin.Context, location string) {
	notices := append(f.read(c), pending(c)...)
	if len(notices) > 0 {
		if value, err := f.encode(notices); err == nil {
			f.setCookie(c, value, int(f.ttl/time.Second))
		}
	}
	c.Redirect(http.StatusFound, location)
}

// Consume returns notices carried over from a redirect followed by those queued in this
// request, and clears the cookie.
func (f *FlashStore) Consume(c *gin.Context) []string {
	notices := f.read(c)
	if _, err := c.Cookie(flashCookieName); err == nil {
		f.setCookie(c, "", -1)
	}
	notices = append(notices, pending(c)...)
	c.Set(flashContextKey, []string(nil))
	return notices
}

func (f *FlashStore) read(c *gin.Context) []string {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	claims, err := f.decode(value)
	if err != nil {
		return nil
	}
	return claims.Notices
}

func (f *FlashStore) encode(notices []string) (string, error) {
	now := time.Now().UTC()
	claims := flashClaims{
		Notices: notices,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

func (f *FlashStore) decode(value string) (*flashClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &flashClaims{}
	if _, err := parser.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return f.secret, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

func (f *FlashStore) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, value, maxAge, "/", "", f.secure, true)
}

func pending(c *gin.Context) []string {
	if v, ok := c.Get(flashContextKey); ok {
		if notices, ok := v.([]string); ok {
			return notices
		}
	}
	return nil
}
