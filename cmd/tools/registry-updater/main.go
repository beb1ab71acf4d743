// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "help", "-h", "--help":
		help()
		return
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	opts := addOptions{}
	fs.StringVar(&opts.ID, "id", "", "Activity ID (e.g., fetch-prices)")
	fs.StringVar(&opts.DisplayName, "displayName", "", "Display Name (e.g., Fetch Prices)")
	fs.StringVar(&opts.Description, "description", "", "Description")
	fs.StringVar(&opts.Category, "category", "", "Category (e.g., shopping)")
	fs.StringVar(&opts.TaskType, "taskType", "", "Zeebe task type (defaults to id)")
	fs.StringVar(&opts.Version, "version", "1.0.0", "Version")
	fs.StringVar(&opts.Status, "status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	fs.StringVar(&opts.Timeout, "timeout", "30s", "Job timeout")
	fs.IntVar(&opts.Retries, "retries", 3, "Retries")
	fs.StringVar(&opts.InputSchemaFile, "inputSchema", "", "Path to a JSON schema file for job input")
	fs.StringVar(&opts.OutputSchemaFile, "outputSchema", "", "Path to a JSON schema file for job output")
	_ = fs.Parse(args)

	if err := addActivity(*path, opts); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", opts.ID)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := fs.String("value", "", "New value for the field")
	_ = fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field, and value are required for update")
	}
	if err := updateActivity(*path, *id, *field, *value); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	_ = fs.Parse(args)

	n, err := validateRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", n)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	category := fs.String("category", "", "Only list activities in this category")
	_ = fs.Parse(args)

	return listActivities(os.Stdout, *path, *category)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file and compile its schemas
  list     List registered activities
  help     Show this help message

Examples:
  registry-updater add -id fetch-prices -displayName "Fetch Prices" -description "Fetches shopping results" -category shopping -inputSchema schemas/fetch-prices.json
  registry-updater update -id fetch-prices -field status -value completed
  registry-updater validate -path configs/activity-registry.json
  registry-updater list -category enrichment

Use 'registry-updater <command> -h' for more information about a command.`)
}
