// Package auth implements the API Gateway token authorizer guarding the
// import endpoint.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/crypto/bcrypt"

	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrAccessDenied = errors.New("access denied")
)

const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"

	policyVersion = "2012-10-17"
	principalID   = "user"
	invokeAction  = "execute-api:Invoke"
)

// Users maps user names to passwords or bcrypt hashes.
type Users map[string]string

// ParseUsers reads "name=password,name2=password2". Entries missing either
// side are ignored.
func ParseUsers(s string) Users {
	users := Users{}
	for _, entry := range strings.Split(s, ",") {
		name, password, ok := strings.Cut(strings.TrimSpace(entry), "=")
		name, password = strings.TrimSpace(name), strings.TrimSpace(password)
		if !ok || name == "" || password == "" {
			continue
		}
		users[name] = password
	}
	return users
}

// Authorizer checks Basic credentials against a fixed user list.
type Authorizer struct {
	users Users
}

func NewAuthorizer(users Users) *Authorizer {
	return &Authorizer{users: users}
}

// Check validates an Authorization header value of the form "Basic <b64>".
func (a *Authorizer) Check(token string) (string, error) {
	encoded, ok := strings.CutPrefix(token, "Basic ")
	if !ok {
		return "", ErrUnauthorized
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", ErrUnauthorized
	}
	name, password, _ := strings.Cut(string(raw), ":")
	if name == "" || password == "" {
		return "", ErrUnauthorized
	}

	expected, known := a.users[name]
	if !known || !matches(expected, password) {
		return name, ErrAccessDenied
	}
	return name, nil
}

// Authorize answers a TOKEN authorizer request. It never fails: bad
// credentials produce a Deny policy for the requested method.
func (a *Authorizer) Authorize(req events.APIGatewayCustomAuthorizerRequest) events.APIGatewayCustomAuthorizerResponse {
	name, err := a.Check(req.AuthorizationToken)
	if err != nil {
		logger.Warn("access denied", "user", name, "method_arn", req.MethodArn, "error", err)
		return Policy(EffectDeny, req.MethodArn)
	}
	logger.Info("access granted", "user", name, "method_arn", req.MethodArn)
	return Policy(EffectAllow, req.MethodArn)
}

// Policy builds a single-statement invoke policy for resource.
func Policy(effect, resource string) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: policyVersion,
			Statement: []events.IAMPolicyStatement{{
				Action:   []string{invokeAction},
				Effect:   effect,
				Resource: []string{resource},
			}},
		},
	}
}

func matches(expected, password string) bool {
	if strings.HasPrefix(expected, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
}
