package cli

import (
	"context"
	"fmt"

	"github.com/campusfix/issuedesk/pkg/cli/config"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	var (
		authCfg config.Auth
		userID  string
		role    string
		name    string
		email   string
	)

	flags := joinFlags(
		authCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Usage:       "User ID carried in the token subject",
				Required:    true,
				Destination: &userID,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "Role of the user (student, staff, admin)",
				Value:       string(types.RoleStudent),
				Destination: &role,
			},
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Display name",
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "email",
				Usage:       "Email address",
				Destination: &email,
			},
		},
	)

	return &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token for local development and testing",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			authUC, err := authCfg.Configure()
			if err != nil {
				return err
			}

			r := types.Role(role)
			if !r.IsValid() {
				return goerr.New("invalid role", goerr.V("role", role))
			}

			identity := model.NewAuthContext(types.UserID(userID), r)
			identity.Name = name
			identity.Email = email

			token, err := authUC.Issue(identity, authCfg.TokenTTL)
			if err != nil {
				return goerr.Wrap(err, "failed to issue token")
			}

			_, err = fmt.Fprintln(c.Root().Writer, token)
			return err
		},
	}
}
