//nolint:forbidigo
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/magodo/slog2hclog"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/translator"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/config"
)

const usage = `Script to test Gitea admin API calls through the SCIM translator.
Usage: giteaclient [options]
Options:
	--action	Action to perform (GetUser, ListUsers, GetOrg, ListOrgs, OrgMembers) (Required)
	--host		The Gitea base URL, e.g. https://gitea.example.com/api/v1 (Required)
	--token		Gitea admin token (Required)
	--id		Username or organization name for single-resource actions
	--page		Page for pagination
	--limit		Limit for pagination
`

const defaultLimit = 100

func getLogger() hclog.Logger {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelError)

	return slog2hclog.New(slog.Default(), logLevel)
}

func main() {
	log.SetOutput(os.Stdout)
	slog.SetLogLoggerLevel(slog.LevelDebug)

	var (
		action, host, token, id string
		page, limit             int
	)

	flag.StringVar(&action, "action", "", "Action to perform (GetUser, ListUsers, GetOrg, ListOrgs, OrgMembers)")
	flag.StringVar(&host, "host", "", "Gitea base URL")
	flag.StringVar(&token, "token", "", "Gitea admin token")
	flag.StringVar(&id, "id", "", "Username or organization name")
	flag.IntVar(&page, "page", 1, "Page for pagination")
	flag.IntVar(&limit, "limit", defaultLimit, "Limit for pagination")

	flag.Parse()

	if action == "" || host == "" || token == "" {
		fmt.Print(usage)
		os.Exit(1)
	}

	ctx := context.Background()

	client, err := gitea.NewClient(gitea.Options{BaseURL: host, Token: token}, getLogger())
	if err != nil {
		fmt.Println("Error creating Gitea client:", err.Error())
		os.Exit(1)
	}

	t := translator.New(client, config.DefaultTeamUnits, "limited", getLogger())

	switch action {
	case "GetUser":
		getUser(ctx, t, id)
	case "ListUsers":
		listUsers(ctx, t, page, limit)
	case "GetOrg":
		getOrg(ctx, t, id)
	case "ListOrgs":
		listOrgs(ctx, t, page, limit)
	case "OrgMembers":
		orgMembers(ctx, t, id)
	default:
		fmt.Println("Invalid action. Supported actions are: GetUser, ListUsers, GetOrg, ListOrgs, OrgMembers")
		os.Exit(1)
	}
}

func getUser(ctx context.Context, t *translator.Translator, id string) {
	if id == "" {
		fmt.Println("ID is required for GetUser action")
		os.Exit(1)
	}

	user, err := t.GetUser(ctx, id)
	if err != nil {
		fmt.Println("Error getting user:", err.Error())
		os.Exit(1)
	}

	if user == nil {
		fmt.Println("User not found")
		return
	}

	fmt.Println("Found User:", user.UserName)
}

func listUsers(ctx context.Context, t *translator.Translator, page, limit int) {
	users, err := t.GetUsers(ctx, &page, &limit)
	if err != nil {
		fmt.Println("Error listing users:", err.Error())
		os.Exit(1)
	}

	fmt.Println("Found Users:")

	for _, user := range users {
		fmt.Println(user.UserName)
	}
}

func getOrg(ctx context.Context, t *translator.Translator, id string) {
	if id == "" {
		fmt.Println("ID is required for GetOrg action")
		os.Exit(1)
	}

	group, err := t.GetOrg(ctx, id)
	if err != nil {
		fmt.Println("Error getting organization:", err.Error())
		os.Exit(1)
	}

	if group == nil {
		fmt.Println("Organization not found")
		return
	}

	fmt.Println("Found Organization:", group.DisplayName)
}

func listOrgs(ctx context.Context, t *translator.Translator, page, limit int) {
	groups, err := t.GetOrgs(ctx, &page, &limit)
	if err != nil {
		fmt.Println("Error listing organizations:", err.Error())
		os.Exit(1)
	}

	fmt.Println("Found Organizations:")

	for _, group := range groups {
		fmt.Println(group.DisplayName)
	}
}

func orgMembers(ctx context.Context, t *translator.Translator, id string) {
	if id == "" {
		fmt.Println("ID is required for OrgMembers action")
		os.Exit(1)
	}

	members, err := t.OrgMembers(ctx, id)
	if err != nil {
		fmt.Println("Error listing members:", err.Error())
		os.Exit(1)
	}

	fmt.Println("Found Members:")

	for _, member := range members {
		fmt.Println(member.Value)
	}
}
