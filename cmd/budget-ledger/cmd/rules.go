package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// rulesCmd groups rule maintenance commands.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and apply categorization rules",
}

// rulesListCmd represents the rules list command.
var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules in evaluation order",
	Run:   runRulesList,
}

// rulesApplyCmd represents the rules apply command.
var rulesApplyCmd = &cobra.Command{
	Use:   "apply [rule-id]",
	Short: "Apply rules to all stored transactions",
	Long: `Apply categorization rules retroactively to every stored transaction.

With no argument every active rule is applied in evaluation order; with
a rule id only that rule runs. Only category, budget, description and
destination name are rewritten. Account balances are never touched.

Example:
  budget-ledger rules apply
  budget-ledger rules apply 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRulesApply,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesApplyCmd)
}

func runRulesList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	stored, err := a.store.ListRules()
	exitOnError(err, "failed to list rules")

	if len(stored) == 0 {
		fmt.Println("No rules defined.")
		return
	}

	fmt.Println("\n=== Rules ===")
	for _, rule := range stored {
		state := "active"
		if !rule.IsActive {
			state = "inactive"
		}
		fmt.Printf("%-38s priority=%-4d %-8s %s\n", rule.ID, rule.Priority, state, rule.Name)
	}
	fmt.Println()
}

func runRulesApply(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	var affected int
	var err error
	if len(args) == 1 {
		ruleID, parseErr := uuid.Parse(args[0])
		exitOnError(parseErr, "invalid rule id")
		affected, err = a.rules.ApplyRule(ruleID)
	} else {
		affected, err = a.rules.ApplyAllActive()
	}
	exitOnError(err, "failed to apply rules")

	slog.Info("rules applied", "affected", affected)
	fmt.Printf("Updated %d transaction(s).\n", affected)
}
