package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/ethica/pkg/config"
	"github.com/coolbeans/ethica/pkg/extract"
	"github.com/coolbeans/ethica/pkg/graph"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ethica",
		Short: "Geometric treatise graph builder",
		Long: `Ethica parses a geometrically ordered philosophical treatise into a
typed element graph.

It scans the text for structural markers (parts, definitions, axioms,
propositions and their demonstrations, scholia, and corollaries), extracts
the citations between elements, and projects the result into a graph:
  - CONTAINS edges from parts to their members
  - HAS edges from propositions to their sub-elements
  - REFERENCES edges for resolved citations`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "ethica.yaml", "Path to configuration file")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse a treatise and build its element graph",
		Long: `Parse a treatise text file and project it into the graph store.

Example:
  ethica ingest --source ethics.txt --stats
  ethica ingest --source ethics.txt --output graph.json --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")
			showStats, _ := cmd.Flags().GetBool("stats")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.Source
			}
			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			fmt.Printf("Ingesting treatise from: %s\n", source)
			startTime := time.Now()

			fmt.Print("  1. Parsing document structure... ")
			file, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			defer file.Close()

			result, err := extract.Parse(file)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}
			elemStats := result.Elements.Statistics()
			fmt.Printf("done (%d parts, %d definitions, %d axioms, %d propositions)\n",
				elemStats.Parts, elemStats.Definitions, elemStats.Axioms, elemStats.Propositions)

			fmt.Print("  2. Resolving references... ")
			resolved := 0
			for _, ref := range result.References {
				if ref.Resolved {
					resolved++
				}
			}
			fmt.Printf("done (%d references, %d resolved)\n", len(result.References), resolved)

			fmt.Print("  3. Projecting graph... ")
			batch, projStats := graph.Project(result)
			fmt.Printf("done (%d nodes, %d edges)\n", projStats.Nodes, len(batch.Edges))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if dryRun {
				store := graph.NewMemStore()
				if err := graph.Apply(ctx, store, batch); err != nil {
					return fmt.Errorf("failed to apply batch: %w", err)
				}
				fmt.Printf("  4. Dry run: graph held in memory (%d nodes, %d edges)\n",
					store.NodeCount(), store.EdgeCount())
			} else {
				logger, err := zap.NewProduction()
				if err != nil {
					return fmt.Errorf("failed to create logger: %w", err)
				}
				defer logger.Sync()

				if err := cfg.Validate(); err != nil {
					return err
				}
				store, err := graph.NewNeo4jStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, logger)
				if err != nil {
					return fmt.Errorf("failed to connect to graph store: %w", err)
				}
				defer store.Close(ctx)

				fmt.Print("  4. Writing to graph store... ")
				if err := store.Setup(ctx); err != nil {
					return fmt.Errorf("failed to set up schema: %w", err)
				}
				if err := store.ApplyBatch(ctx, batch); err != nil {
					return fmt.Errorf("failed to apply batch: %w", err)
				}
				fmt.Println("done")
			}

			if output != "" {
				data, err := json.MarshalIndent(batch, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode graph: %w", err)
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				fmt.Printf("Graph written to: %s\n", output)
			}

			fmt.Printf("\nCompleted in %s\n", time.Since(startTime).Round(time.Millisecond))

			if showStats {
				fmt.Println("\nStatistics:")
				fmt.Print(projStats)
			}

			if len(result.Diagnostics) > 0 {
				fmt.Printf("\nDiagnostics (%d):\n", len(result.Diagnostics))
				for kind, count := range result.Report().CountByKind() {
					fmt.Printf("  %s: %d\n", kind, count)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("source", "", "Path to the treatise text file")
	cmd.Flags().String("output", "", "Write the projected graph as JSON to this file")
	cmd.Flags().Bool("stats", false, "Print projection statistics")
	cmd.Flags().Bool("dry-run", false, "Parse and project without writing to the database")
	return cmd
}

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List the citations found in a treatise",
		Long: `Parse a treatise and print each citation with its source, target,
and resolution status.

Example:
  ethica refs --source ethics.txt
  ethica refs --source ethics.txt --unresolved`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			onlyUnresolved, _ := cmd.Flags().GetBool("unresolved")

			if source == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				source = cfg.Source
			}
			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			file, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			defer file.Close()

			result, err := extract.Parse(file)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}

			printed := 0
			for _, ref := range result.References {
				if onlyUnresolved && ref.Resolved {
					continue
				}
				status := "resolved"
				if !ref.Resolved {
					status = "UNRESOLVED"
				}
				fmt.Printf("  %-24s -> %-24s [%s] %q\n",
					ref.Source.Key(), ref.Target.Key(), status, ref.RawText)
				printed++
			}

			if printed == 0 {
				if onlyUnresolved {
					fmt.Println("All references resolved.")
				} else {
					fmt.Println("No references found.")
				}
			} else {
				fmt.Printf("\n%d reference(s)\n", printed)
			}
			return nil
		},
	}

	cmd.Flags().String("source", "", "Path to the treatise text file")
	cmd.Flags().Bool("unresolved", false, "Show only unresolved references")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the graph store and report its contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			store, err := graph.NewNeo4jStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, zap.NewNop())
			if err != nil {
				return fmt.Errorf("failed to connect to graph store: %w", err)
			}
			defer store.Close(ctx)

			fmt.Printf("Connected to: %s\n", cfg.Neo4j.URI)

			nodeCounts, err := store.NodeCounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to count nodes: %w", err)
			}
			edgeCounts, err := store.EdgeCounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to count edges: %w", err)
			}

			fmt.Println("\nNodes:")
			for _, label := range []string{"Part", "Definition", "Axiom", "Proposition", "Demonstration", "Scholium", "Corollary"} {
				if count := nodeCounts[label]; count > 0 {
					fmt.Printf("  %-14s %d\n", label, count)
				}
			}
			fmt.Println("\nRelationships:")
			for _, edgeType := range []string{graph.EdgeContains, graph.EdgeHas, graph.EdgeReferences} {
				if count := edgeCounts[edgeType]; count > 0 {
					fmt.Printf("  %-12s %d\n", edgeType, count)
				}
			}
			return nil
		},
	}
}
