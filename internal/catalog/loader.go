package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of a catalog file
type file struct {
	Items []Input `yaml:"items" toml:"items" json:"items"`
}

// frontmatter is the YAML header of a Markdown item file
type frontmatter struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags"`
}

// Defaults returns the built-in demo catalog
func Defaults() []Input {
	return []Input{
		{Name: "Boho Dress", Description: "Flowy, earthy tones for festival vibes.", Tags: []string{"boho", "relaxed"}},
		{Name: "Street Jacket", Description: "Bold patterns and edgy design for city life.", Tags: []string{"urban", "chic"}},
		{Name: "Cozy Sweater", Description: "Warm, soft knit perfect for a relaxed evening.", Tags: []string{"cozy", "casual"}},
		{Name: "Sporty Sneakers", Description: "Lightweight sneakers for an active, energetic look.", Tags: []string{"sporty", "energetic"}},
		{Name: "Classic Blazer", Description: "Tailored fit for a professional and elegant vibe.", Tags: []string{"formal", "classic"}},
		{Name: "Denim Jeans", Description: "Casual blue jeans for everyday comfort and style.", Tags: []string{"casual", "urban"}},
		{Name: "Floral Skirt", Description: "Bright floral print for cheerful summer days.", Tags: []string{"boho", "vibrant"}},
		{Name: "Leather Boots", Description: "Rugged and stylish boots for a confident, bold look.", Tags: []string{"bold", "urban"}},
	}
}

// Load reads inputs from path: a directory of Markdown files or a single
// YAML, TOML or JSON catalog file. An empty path yields Defaults.
func Load(path string) ([]Input, error) {
	if path == "" {
		return Defaults(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile parses a catalog file, picking the format from its extension
func LoadFile(path string) ([]Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	for i, in := range f.Items {
		if err := validate(in); err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", path, i, err)
		}
	}

	return f.Items, nil
}

// LoadDir loads every *.md item file in dir, in lexical filename order.
// README.md and files starting with _ are skipped. Files that fail to parse
// are reported together but do not discard the ones that parsed.
func LoadDir(dir string) ([]Input, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob files: %w", err)
	}

	var inputs []Input
	var errs []string
	for _, path := range files {
		base := filepath.Base(path)
		if strings.EqualFold(base, "README.md") || strings.HasPrefix(base, "_") {
			continue
		}

		in, err := parseMarkdown(path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		inputs = append(inputs, in)
	}

	if len(errs) > 0 {
		return inputs, fmt.Errorf("failed to parse some files:\n%s", strings.Join(errs, "\n"))
	}
	return inputs, nil
}

// parseMarkdown reads an item file: YAML frontmatter then the description.
// Without a name in the frontmatter the filename stem is used.
func parseMarkdown(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return Input{}, err
	}

	in := Input{
		Name:        fm.Name,
		Description: strings.TrimSpace(body),
		Tags:        fm.Tags,
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return in, validate(in)
}

func splitFrontmatter(data []byte) (frontmatter, string, error) {
	var fm frontmatter

	lines := strings.Split(string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return fm, string(data), nil
	}

	endIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		return fm, "", fmt.Errorf("unclosed frontmatter")
	}

	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:endIdx], "\n")), &fm); err != nil {
		return fm, "", fmt.Errorf("failed to parse YAML: %w", err)
	}

	return fm, strings.Join(lines[endIdx+1:], "\n"), nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%s: missing description", in.Name)
	}
	return nil
}
