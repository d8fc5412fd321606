package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/storage"
)

func newRecipeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage stored recipes",
	}
	cmd.AddCommand(newRecipeImportCommand(ctx))
	cmd.AddCommand(newRecipeShowCommand(ctx))
	return cmd
}

func newRecipeImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.toml>",
		Short: "Import a recipe from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := readRecipeFile(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(func(repo storage.Repository) error {
				if err := repo.SaveRecipe(cmdContext(cmd), recipe); err != nil {
					return fmt.Errorf("save recipe: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d steps)\n", recipe.ID, len(recipe.Steps))
				return nil
			})
		},
	}
}

func newRecipeShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored recipe and its cooking history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo storage.Repository) error {
				c := cmdContext(cmd)
				recipe, err := repo.GetRecipeByID(c, args[0])
				if err != nil {
					return err
				}
				completions, err := repo.ListCompletions(c, recipe.ID)
				if err != nil {
					return err
				}
				printRecipe(cmd.OutOrStdout(), recipe, len(completions))
				return nil
			})
		},
	}
}

// readRecipeFile decodes a recipe and fills in what the file may omit.
func readRecipeFile(path string) (*domain.Recipe, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe: %w", err)
	}
	defer file.Close()

	var recipe domain.Recipe
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&recipe); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}

	recipe.ID = strings.TrimSpace(recipe.ID)
	if recipe.ID == "" {
		return nil, fmt.Errorf("recipe %s: id is required", path)
	}
	if len(recipe.Steps) == 0 {
		return nil, fmt.Errorf("recipe %s: %w", path, domain.ErrNoSteps)
	}
	for i := range recipe.Steps {
		if recipe.Steps[i].StepNumber == 0 {
			recipe.Steps[i].StepNumber = i + 1
		}
	}
	if recipe.CurrentServings == 0 {
		recipe.CurrentServings = recipe.OriginalServings
	}
	return &recipe, nil
}

func printRecipe(w io.Writer, r *domain.Recipe, completions int) {
	fmt.Fprintf(w, "%s (%s)\n", r.Title, r.ID)
	if r.OriginalServings > 0 {
		fmt.Fprintf(w, "Serves %d\n", r.CurrentServings)
	}
	fmt.Fprintf(w, "Cooked %d times", r.TimesCooked)
	if r.LastCookedAt != nil {
		fmt.Fprintf(w, ", last on %s", r.LastCookedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, " (%d logged)\n\n", completions)

	for _, step := range r.Steps {
		line := fmt.Sprintf("%2d. %s", step.StepNumber, step.Instruction)
		if d, ok := step.Duration(); ok {
			line += fmt.Sprintf(" [%s]", d)
		}
		if step.Temperature != "" {
			line += fmt.Sprintf(" @ %s", step.Temperature)
		}
		fmt.Fprintln(w, line)
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
