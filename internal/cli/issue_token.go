package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/giverr/giverr/internal/security"
)

// RunIssueTokenCommand prints a signed identity token for local development.
//
//	giverr issue-token -sub <id> [-email e] [-first f] [-last l] [-image url] [-ttl 24h]
func RunIssueTokenCommand(secret []byte, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	subject := flags.String("sub", "", "user id")
	email := flags.String("email", "", "email claim")
	firstName := flags.String("first", "", "first name claim")
	lastName := flags.String("last", "", "last name claim")
	image := flags.String("image", "", "profile image url claim")
	ttl := flags.Duration("ttl", security.DefaultIdentityTokenTTL, "token lifetime")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if strings.TrimSpace(*subject) == "" {
		return errors.New("-sub is required")
	}

	claims := security.IdentityClaims{
		Email:           *email,
		FirstName:       *firstName,
		LastName:        *lastName,
		ProfileImageURL: *image,
	}
	claims.Subject = strings.TrimSpace(*subject)

	token, err := security.SignIdentityToken(secret, claims, *ttl, time.Now())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(out, token)
	return nil
}
