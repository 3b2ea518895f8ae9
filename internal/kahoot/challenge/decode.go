package challenge

import (
	_ "embed"
	"encoding/base64"
	"unicode/utf8"

	"github.com/dop251/goja"
)

// jsEnvPatches defines the minimal angular/underscore surface the
// server-supplied script closes over.
//
//go:embed js_env_patches.js
var jsEnvPatches string

// Decode evaluates the challenge script and uses its result to decode the
// session token.
func Decode(encodedToken, challengeScript string) (string, error) {
	key, err := DecodeChallenge(challengeScript)
	if err != nil {
		return "", err
	}
	return DecodeToken(encodedToken, key)
}

// DecodeChallenge runs the server-supplied script in a fresh sandbox and
// returns the string it evaluates to. The runtime has no host access
// beyond the shims in js_env_patches.js.
func DecodeChallenge(script string) (string, error) {
	vm := goja.New()

	if _, err := vm.RunScript("js_env_patches.js", jsEnvPatches); err != nil {
		return "", &ScriptError{Err: err}
	}

	value, err := vm.RunScript("challenge.js", script)
	if err != nil {
		return "", &ScriptError{Err: err}
	}

	key, ok := value.Export().(string)
	if !ok {
		return "", &ScriptError{Err: ErrChallengeNotString}
	}
	return key, nil
}

// DecodeToken base64-decodes the header token and XORs each byte against
// the challenge key, cycling through the key bytes. The result must be
// valid UTF-8.
func DecodeToken(token, challenge string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", &TokenDecodeError{Err: err}
	}

	key := []byte(challenge)
	if len(key) == 0 && len(raw) > 0 {
		return "", &TokenDecodeError{Err: ErrEmptyChallenge}
	}
	for i := range raw {
		raw[i] ^= key[i%len(key)]
	}

	if !utf8.Valid(raw) {
		return "", &TokenDecodeError{Err: ErrTokenNotUTF8}
	}
	return string(raw), nil
}
