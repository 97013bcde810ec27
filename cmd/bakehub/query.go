package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// entityTables maps list entities to their table and whether rows are baker owned.
var entityTables = map[string]struct {
	table  string
	tenant bool
}{
	repository.EntityUsers:     {"users", false},
	repository.EntityThemes:    {"themes", false},
	repository.EntityBakers:    {"bakers", false},
	repository.EntityCustomers: {"customers", true},
	repository.EntityOrders:    {"orders", true},
	repository.EntityFiles:     {"files", true},
	repository.EntityGallery:   {"gallery_items", true},
	repository.EntityMessages:  {"messages", true},
}

func init() {
	var entity string
	var bakerID int64
	var queryCmd = &cobra.Command{
		Use:   "query <querystring>",
		Short: "Show how a list query string is translated",
		Long: `Translate a query string such as "sort=-created_date&limit=10&category=wedding"
into a list descriptor. With --entity the descriptor is also checked against
that entity and the resulting SQL clauses are printed.`,
		Example: `  bakehub query 'sort=-created_date&featured=true' --entity gallery --baker 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explainQuery(os.Stdout, args[0], entity, bakerID, cfg.Query.Bounds())
		},
	}
	queryCmd.Flags().StringVarP(&entity, "entity", "e", "", "Entity to compile against (users, themes, bakers, customers, orders, files, gallery, messages)")
	queryCmd.Flags().Int64Var(&bakerID, "baker", 1, "Baker id used as the tenant scope")
	rootCmd.AddCommand(queryCmd)
}

func explainQuery(w io.Writer, raw, entity string, bakerID int64, bounds query.Bounds) error {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return fmt.Errorf("parse query string: %w", err)
	}
	desc := query.Translate(query.FromValues(values))

	encoded, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Descriptor:\n%s\n", encoded)

	if entity == "" {
		return nil
	}
	schema, ok := repository.SchemaFor(entity)
	target, known := entityTables[entity]
	if !ok || !known {
		return fmt.Errorf("unknown entity %q", entity)
	}
	var scopes []query.Scope
	if target.tenant {
		scopes = append(scopes, query.Scope{Column: "baker_id", Value: bakerID})
	}
	compiled, err := schema.Compile(desc, bounds, scopes...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nSQL:\nSELECT * FROM %s%s%s\n", target.table, compiled.Where(), compiled.Tail())
	fmt.Fprintf(w, "Args: %v\n", compiled.Args)
	return nil
}
