// cmd/arkain/profile.go
//
// The profile subcommand inspects the jurisdiction store: list the known
// markets, dump one profile, or compute the most-restrictive intersection
// of a market set. Profile packs under .arkain/profiles/ are merged in
// before any lookup.
package main

import (
	"flag"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func runProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	market := fs.String("market", "", "dump one market profile")
	var intersect listFlag
	fs.Var(&intersect, "intersect", "markets to intersect (comma separated)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadProject(*project)
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(cfg)
	if err != nil {
		return err
	}

	if len(intersect) > 0 {
		return printJSON(profiles.Intersect(intersect))
	}
	if name := strings.TrimSpace(*market); name != "" {
		profile, ok := profiles.Get(name)
		if !ok {
			return fmt.Errorf("unknown market %q; known markets: %s",
				name, strings.Join(profiles.Names(), ", "))
		}
		// Dumped as YAML so the output doubles as a profile-pack template.
		data, err := yaml.Marshal(profile)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	for _, name := range profiles.Names() {
		fmt.Println(name)
	}
	return nil
}
