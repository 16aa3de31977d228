package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mapleins/community/internal/client"
	"github.com/mapleins/community/internal/onboarding"
)

var credentialFlags = []cli.Flag{
	&cli.StringFlag{Name: "email", Required: true},
	&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ROOMCHAT_PASSWORD"}},
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "create an account and sign in",
		Flags: credentialFlags,
		Action: func(cctx *cli.Context) error {
			c, path, err := newClient(cctx)
			if err != nil {
				return err
			}

			user, err := c.SignUp(cctx.Context, cctx.String("email"), cctx.String("password"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if err := saveToken(path, c.Token()); err != nil {
				return err
			}

			color.Green.Printf("Signed up as %s. Next: roomchat onboard\n", user.EmailAddress)
			return nil
		},
	}
}

func signinCommand() *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "sign in with email and password",
		Flags: credentialFlags,
		Action: func(cctx *cli.Context) error {
			c, path, err := newClient(cctx)
			if err != nil {
				return err
			}

			user, err := c.SignIn(cctx.Context, cctx.String("email"), cctx.String("password"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if err := saveToken(path, c.Token()); err != nil {
				return err
			}

			color.Green.Printf("Signed in as %s\n", user.EmailAddress)
			return nil
		},
	}
}

func signoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "end the stored session",
		Action: func(cctx *cli.Context) error {
			c, path, err := newClient(cctx)
			if err != nil {
				return err
			}
			if err := c.SignOut(cctx.Context); err != nil {
				color.Yellow.Printf("server sign out failed: %v\n", err)
			}
			return saveToken(path, "")
		},
	}
}

func onboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "onboard",
		Usage: "complete or update your profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: onboarding.ModeMoving, Usage: "moving or local"},
			&cli.StringFlag{Name: "full-name", Required: true},
			&cli.StringFlag{Name: "date-of-birth", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "display-name"},
			&cli.StringFlag{Name: "from-country", Value: "India"},
			&cli.StringFlag{Name: "from-state"},
			&cli.StringFlag{Name: "to-country", Value: "Canada"},
			&cli.StringFlag{Name: "to-province"},
			&cli.StringFlag{Name: "to-city"},
			&cli.StringFlag{Name: "role", Value: onboarding.DefaultRole},
			&cli.StringFlag{Name: "reasons"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "current-country"},
			&cli.StringFlag{Name: "current-province"},
			&cli.StringFlag{Name: "current-city"},
		},
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(cctx)
			if err != nil {
				return err
			}

			res, err := c.Onboard(cctx.Context, onboarding.Request{
				Mode:            cctx.String("mode"),
				FullName:        cctx.String("full-name"),
				DateOfBirth:     cctx.String("date-of-birth"),
				Username:        cctx.String("username"),
				DisplayName:     cctx.String("display-name"),
				FromCountry:     cctx.String("from-country"),
				FromState:       cctx.String("from-state"),
				ToCountry:       cctx.String("to-country"),
				ToProvince:      cctx.String("to-province"),
				ToCity:          cctx.String("to-city"),
				Role:            cctx.String("role"),
				Reasons:         cctx.String("reasons"),
				Phone:           cctx.String("phone"),
				CurrentCountry:  cctx.String("current-country"),
				CurrentProvince: cctx.String("current-province"),
				CurrentCity:     cctx.String("current-city"),
			})
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			color.Green.Printf("Profile saved for @%s\n", res.Profile.Username)
			for _, r := range res.Joined {
				fmt.Printf("  joined %s (%s)\n", r.Name, r.Type)
			}
			return nil
		},
	}
}

func roomsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rooms",
		Usage: "list the rooms you belong to",
		Subcommands: []*cli.Command{
			{
				Name:      "join",
				Usage:     "join a room by id",
				ArgsUsage: "<room-id>",
				Action: func(cctx *cli.Context) error {
					if cctx.NArg() != 1 {
						return cli.Exit("usage: roomchat rooms join <room-id>", 2)
					}
					c, _, err := newClient(cctx)
					if err != nil {
						return err
					}
					room, err := c.JoinRoom(cctx.Context, cctx.Args().First())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					color.Green.Printf("Joined %s\n", room.Name)
					return nil
				},
			},
		},
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(cctx)
			if err != nil {
				return err
			}

			rooms, err := c.Rooms(cctx.Context)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if len(rooms) == 0 {
				color.Yellow.Println("You haven't joined any rooms yet. Finish onboarding to join your destination's rooms.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Id", "Name", "Type", "Country", "Province", "City"})
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			for _, r := range rooms {
				table.Append([]string{r.Id, r.Name, r.Type, r.Country, r.Province, r.City})
			}
			table.Render()
			return nil
		},
	}
}

func waitlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "waitlist",
		Usage: "join the waitlist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "role", Value: "other"},
			&cli.StringFlag{Name: "city"},
			&cli.StringFlag{Name: "intake"},
		},
		Action: func(cctx *cli.Context) error {
			c, _, err := newClient(cctx)
			if err != nil {
				return err
			}

			err = c.JoinWaitlist(cctx.Context, client.WaitlistEntry{
				Email:  cctx.String("email"),
				Name:   cctx.String("name"),
				Role:   cctx.String("role"),
				City:   cctx.String("city"),
				Intake: cctx.String("intake"),
			})
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			color.Green.Println("You're on the list. We'll be in touch.")
			return nil
		},
	}
}
