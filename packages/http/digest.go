package http

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// DigestAuth contains the parameters needed for digest authentication
type DigestAuth struct {
	Username string
	Password string
	Realm    string
	Nonce    string
	URI      string
	Qop      string
	Nc       string
	Cnonce   string
	Opaque   string
	Method   string
	// Body is hashed into the response when Qop is "auth-int"
	Body []byte
}

// ParseWWWAuthenticate parses the parameters of a Digest challenge.
// Quoted values may contain commas, e.g. qop="auth,auth-int".
func ParseWWWAuthenticate(header string) map[string]string {
	result := make(map[string]string)
	header = strings.TrimSpace(strings.TrimPrefix(header, "Digest "))

	var key strings.Builder
	var value strings.Builder
	inValue, quoted := false, false

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			result[k] = strings.TrimSpace(value.String())
		}
		key.Reset()
		value.Reset()
		inValue, quoted = false, false
	}

	for _, ch := range header {
		switch {
		case ch == '"' && inValue:
			quoted = !quoted
		case ch == ',' && !quoted:
			flush()
		case ch == '=' && !inValue:
			inValue = true
		case inValue:
			value.WriteRune(ch)
		default:
			key.WriteRune(ch)
		}
	}
	flush()

	return result
}

// ComputeDigestResponse calculates the digest response hash
func (d *DigestAuth) ComputeDigestResponse() string {
	// HA1 = MD5(username:realm:password)
	ha1 := md5Hash(fmt.Sprintf("%s:%s:%s", d.Username, d.Realm, d.Password))

	// HA2 = MD5(method:uri), or MD5(method:uri:MD5(body)) for auth-int
	ha2 := md5Hash(fmt.Sprintf("%s:%s", d.Method, d.URI))
	if d.Qop == "auth-int" {
		ha2 = md5Hash(fmt.Sprintf("%s:%s:%s", d.Method, d.URI, md5Hash(string(d.Body))))
	}

	if d.Qop == "auth" || d.Qop == "auth-int" {
		return md5Hash(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, d.Nonce, d.Nc, d.Cnonce, d.Qop, ha2))
	}
	return md5Hash(fmt.Sprintf("%s:%s:%s", ha1, d.Nonce, ha2))
}

// BuildAuthorizationHeader creates the Authorization header value
func (d *DigestAuth) BuildAuthorizationHeader() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, d.Username),
		fmt.Sprintf(`realm="%s"`, d.Realm),
		fmt.Sprintf(`nonce="%s"`, d.Nonce),
		fmt.Sprintf(`uri="%s"`, d.URI),
		fmt.Sprintf(`response="%s"`, d.ComputeDigestResponse()),
	}

	if d.Qop != "" {
		parts = append(parts,
			fmt.Sprintf(`qop=%s`, d.Qop),
			fmt.Sprintf(`nc=%s`, d.Nc),
			fmt.Sprintf(`cnonce="%s"`, d.Cnonce),
		)
	}

	if d.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.Opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

// SelectQop picks the protection level to answer a challenge with from the
// comma-separated qop list the server offered. "auth" is preferred; an empty
// result means the challenge is answered without qop.
func SelectQop(offered string) string {
	var authInt bool
	for _, token := range strings.Split(offered, ",") {
		switch strings.TrimSpace(token) {
		case "auth":
			return "auth"
		case "auth-int":
			authInt = true
		}
	}
	if authInt {
		return "auth-int"
	}
	return ""
}

// GenerateCnonce generates a random client nonce
func GenerateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
