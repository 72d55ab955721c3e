// cmd/tools/vocabulary-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"wenwen-recommender/internal/models"
	"wenwen-recommender/pkg/registry"
)

const defaultPath = "configs/vocabulary.json"

func main() {
	fabricationCmd := flag.NewFlagSet("add-fabrication", flag.ExitOnError)
	keywordCmd := flag.NewFlagSet("add-keyword", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	fabricationPath := fabricationCmd.String("path", defaultPath, "Path to vocabulary file")
	name := fabricationCmd.String("name", "", "Business name the model has been seen inventing")

	keywordPath := keywordCmd.String("path", defaultPath, "Path to vocabulary file")
	intent := keywordCmd.String("intent", "", "Scored intent (e.g., ENGLISH_LEARNING)")
	keyword := keywordCmd.String("keyword", "", "Keyword to add")

	validatePath := validateCmd.String("path", defaultPath, "Path to vocabulary file")
	showPath := showCmd.String("path", defaultPath, "Path to vocabulary file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-fabrication":
		fabricationCmd.Parse(os.Args[2:])
		if *name == "" {
			fmt.Println("Error: name is required for add-fabrication.")
			fabricationCmd.Usage()
			os.Exit(1)
		}
		if err := addFabrication(*fabricationPath, *name); err != nil {
			fmt.Printf("Error adding fabricated name: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added fabricated name: %s\n", *name)

	case "add-keyword":
		keywordCmd.Parse(os.Args[2:])
		if *intent == "" || *keyword == "" {
			fmt.Println("Error: intent and keyword are required for add-keyword.")
			keywordCmd.Usage()
			os.Exit(1)
		}
		if err := addKeyword(*keywordPath, *intent, *keyword); err != nil {
			fmt.Printf("Error adding keyword: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added keyword %q to %s\n", *keyword, *intent)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if _, err := registry.LoadWithDefaults(*validatePath); err != nil {
			fmt.Printf("Vocabulary validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Vocabulary validation passed.")

	case "show":
		showCmd.Parse(os.Args[2:])
		if err := show(*showPath); err != nil {
			fmt.Printf("Error reading vocabulary: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// load reads the override file, starting empty when it does not exist yet.
func load(path string) (*registry.Vocabulary, error) {
	v, err := registry.LoadVocabulary(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &registry.Vocabulary{Version: "1.0.0"}, nil
		}
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return v, nil
}

// save refuses to write a file that would not load at startup.
func save(path string, v *registry.Vocabulary) error {
	if err := registry.Merge(registry.Default(), v).Validate(); err != nil {
		return err
	}
	return registry.SaveVocabulary(path, v)
}

func addFabrication(path, name string) error {
	v, err := load(path)
	if err != nil {
		return err
	}
	// An override list replaces the defaults, so seed it before appending.
	if len(v.FabricatedNames) == 0 {
		v.FabricatedNames = append([]string(nil), registry.Default().FabricatedNames...)
	}
	if !v.AddFabricatedName(name) {
		return fmt.Errorf("%q is empty or already listed", name)
	}
	return save(path, v)
}

func addKeyword(path, intentName, keyword string) error {
	in, ok := models.ParseIntent(strings.ToUpper(strings.TrimSpace(intentName)))
	if !ok {
		return fmt.Errorf("unknown intent %q", intentName)
	}
	v, err := load(path)
	if err != nil {
		return err
	}
	if len(v.Intents[string(in)]) == 0 {
		if v.Intents == nil {
			v.Intents = map[string][]string{}
		}
		v.Intents[string(in)] = append([]string(nil), registry.Default().Intents[string(in)]...)
	}
	if err := v.AddKeyword(in, keyword); err != nil {
		return err
	}
	return save(path, v)
}

func show(path string) error {
	v, err := registry.LoadWithDefaults(path)
	if err != nil {
		return err
	}
	fmt.Printf("Vocabulary %s (updated %s)\n", v.Version, v.LastUpdated)

	intents := make([]string, 0, len(v.Intents))
	for k := range v.Intents {
		intents = append(intents, k)
	}
	sort.Strings(intents)
	for _, k := range intents {
		fmt.Printf("  %-17s %s\n", k, strings.Join(v.Intents[k], ", "))
	}
	fmt.Printf("  fabricated names: %s\n", strings.Join(v.FabricatedNames, ", "))
	fmt.Printf("  follow-up phrases: %d, address patterns: %d\n", len(v.FollowUpPhrases), len(v.FakeAddressPatterns))
	return nil
}

func help() {
	fmt.Println("Vocabulary Updater")
	fmt.Println("Usage:")
	fmt.Println("  vocabulary-updater add-fabrication -name <name> [-path <file>]")
	fmt.Println("  vocabulary-updater add-keyword -intent <INTENT> -keyword <word> [-path <file>]")
	fmt.Println("  vocabulary-updater validate [-path <file>]")
	fmt.Println("  vocabulary-updater show [-path <file>]")
}
