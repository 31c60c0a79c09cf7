package ports

import "github.com/codeventure/warden/core"

// Tokenizer converts between sessions and signed token strings.
type Tokenizer interface {
	// Session token operations
	SessionToAccessToken(session *core.Session) (string, error)
	AccessTokenToSession(token string) (*core.Session, error)
	SessionToRefreshToken(session *core.Session) (string, error)
	RefreshTokenToSession(token string) (*core.Session, error)

	// DecodeUnverified extracts claims without checking signature or expiry.
	// Used only to recover the jti of an expired or malformed refresh token
	// for revocation, never for authorization decisions.
	DecodeUnverified(token string) (*core.Session, error)
}
