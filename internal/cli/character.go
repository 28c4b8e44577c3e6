package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var statNames = []string{"health", "attack", "defense", "speed", "mana"}

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Character commands",
	}

	cmd.AddCommand(newCharacterCreateCmd())
	cmd.AddCommand(newCharacterListCmd())
	cmd.AddCommand(newCharacterGetCmd())
	cmd.AddCommand(newCharacterUpdateCmd())
	cmd.AddCommand(newCharacterDeleteCmd())
	cmd.AddCommand(newCharacterBulkDeleteCmd())
	cmd.AddCommand(newCharacterLevelUpCmd())
	cmd.AddCommand(newCharacterAddXPCmd())
	cmd.AddCommand(newCharacterBattleCmd())

	return cmd
}

// addCharacterFlags registers the fields shared by create and update
func addCharacterFlags(flags *pflag.FlagSet) {
	flags.String("name", "", "Character name")
	flags.String("class", "", "Class: warrior, mage, archer, assassin, healer")
	flags.Int("level", 0, "Level (1-100)")
	flags.Int("experience", 0, "Experience points")
	flags.String("rarity", "", "Rarity: common, rare, epic, legendary")
	flags.StringSlice("skills", nil, "Comma-separated skills")
	flags.Bool("active", true, "Whether the character is active")
	flags.String("owner", "", "Owning user ID")
	for _, stat := range statNames {
		flags.Int(stat, 0, "Base "+stat)
	}
}

// characterBody builds a request body from the flags the user actually set
func characterBody(flags *pflag.FlagSet) map[string]any {
	body := map[string]any{}
	if flags.Changed("name") {
		body["name"], _ = flags.GetString("name")
	}
	if flags.Changed("class") {
		body["class"], _ = flags.GetString("class")
	}
	if flags.Changed("level") {
		body["level"], _ = flags.GetInt("level")
	}
	if flags.Changed("experience") {
		body["experience"], _ = flags.GetInt("experience")
	}
	if flags.Changed("rarity") {
		body["rarity"], _ = flags.GetString("rarity")
	}
	if flags.Changed("skills") {
		body["skills"], _ = flags.GetStringSlice("skills")
	}
	if flags.Changed("active") {
		body["isActive"], _ = flags.GetBool("active")
	}
	if flags.Changed("owner") {
		body["userId"], _ = flags.GetString("owner")
	}

	stats := map[string]int{}
	for _, stat := range statNames {
		if flags.Changed(stat) {
			stats[stat], _ = flags.GetInt(stat)
		}
	}
	if len(stats) > 0 {
		body["stats"] = stats
	}
	return body
}

func newCharacterCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a character (stats default to the class defaults)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character
			if _, err := client.Post("/api/characters", characterBody(cmd.Flags()), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	addCharacterFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}

func newCharacterUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := characterBody(cmd.Flags())
			if len(body) == 0 {
				return fmt.Errorf("nothing to update")
			}

			var result Character
			if _, err := client.Put("/api/characters/"+url.PathEscape(args[0]), body, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	addCharacterFlags(cmd.Flags())

	return cmd
}

func newCharacterListCmd() *cobra.Command {
	var (
		page, limit, minLevel, maxLevel int
		sortBy, order                   string
		class, rarity, search, owner    string
		active                          bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if page > 0 {
				q.Set("page", strconv.Itoa(page))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if minLevel > 0 {
				q.Set("minLevel", strconv.Itoa(minLevel))
			}
			if maxLevel > 0 {
				q.Set("maxLevel", strconv.Itoa(maxLevel))
			}
			for key, val := range map[string]string{
				"sortBy":    sortBy,
				"sortOrder": order,
				"class":     class,
				"rarity":    rarity,
				"search":    search,
				"userId":    owner,
			} {
				if val != "" {
					q.Set(key, val)
				}
			}
			if cmd.Flags().Changed("active") {
				q.Set("isActive", strconv.FormatBool(active))
			}

			path := "/api/characters"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var result CharacterList
			env, err := client.Get(path, &result.Characters)
			if err != nil {
				return err
			}
			if env.Pagination != nil {
				result.Pagination = *env.Pagination
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (default 1)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default 10)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort field, e.g. level or createdAt")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc")
	cmd.Flags().StringVar(&class, "class", "", "Filter by class")
	cmd.Flags().StringVar(&rarity, "rarity", "", "Filter by rarity")
	cmd.Flags().IntVar(&minLevel, "min-level", 0, "Minimum level")
	cmd.Flags().IntVar(&maxLevel, "max-level", 0, "Maximum level")
	cmd.Flags().StringVar(&search, "search", "", "Match name substring or exact skill")
	cmd.Flags().StringVar(&owner, "owner", "", "Filter by owning user ID")
	cmd.Flags().BoolVar(&active, "active", true, "Filter by active flag")

	return cmd
}

func newCharacterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character
			if _, err := client.Get("/api/characters/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character
			if _, err := client.Delete("/api/characters/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterBulkDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-delete <id>...",
		Short: "Delete several characters; unknown IDs are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Post("/api/characters/bulk-delete", map[string][]string{"ids": args}, nil)
			if err != nil {
				return err
			}

			var result DeleteResult
			if env.DeletedCount != nil {
				result.DeletedCount = *env.DeletedCount
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterLevelUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level-up <id>",
		Short: "Level a character up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character
			if _, err := client.Post("/api/characters/"+url.PathEscape(args[0])+"/level-up", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterAddXPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-xp <id> <amount>",
		Short: "Grant experience to a character",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			var result Character
			path := "/api/characters/" + url.PathEscape(args[0]) + "/add-experience"
			if _, err := client.Post(path, map[string]int{"experience": amount}, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newCharacterBattleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battle <id1> <id2>",
		Short: "Battle two characters; ties go to the second",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"char1Id": args[0], "char2Id": args[1]}
			var result BattleResult
			if _, err := client.Post("/api/characters/battle", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top characters by battle wins",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/leaderboard"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result Leaderboard
			if _, err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries (default 10)")

	return cmd
}
