package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gcalphotos/gcalphotos/internal/router"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the tool catalog and outputs its documentation
in markdown format, ensuring the documentation is always accurate and in
sync with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	markdown := generateToolsMarkdown(router.DefaultRegistry().All())

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(tools []router.ToolDefinition) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gcalphotos as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", tool.Name, strings.ReplaceAll(tool.Name, "_", "")))
	}
	sb.WriteString("\n")

	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool router.ToolDefinition) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.Fields) > 0 {
		sb.WriteString("**Arguments:**\n")

		for _, f := range tool.Fields {
			requiredStr := "optional"
			if f.Required {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): %s", f.Name, f.Type, requiredStr, f.Description))

			var notes []string
			if f.Default != nil {
				notes = append(notes, fmt.Sprintf("default: `%v`", f.Default))
			}
			if f.Min != nil && f.Max != nil {
				notes = append(notes, fmt.Sprintf("range: %d-%d", *f.Min, *f.Max))
			}
			if len(f.Enum) > 0 {
				notes = append(notes, "one of: "+strings.Join(f.Enum, ", "))
			}
			if len(notes) > 0 {
				sb.WriteString(" (" + strings.Join(notes, ", ") + ")")
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
