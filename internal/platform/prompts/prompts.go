package prompts

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type Name string

const (
	SalesAgentSystem    Name = "sales_agent_system"
	IntentAnalysis      Name = "intent_analysis"
	RecommendationAgent Name = "recommendation_agent"
	InventoryAgent      Name = "inventory_agent"
	CartAgent           Name = "cart_agent"
	LoyaltyAgent        Name = "loyalty_agent"
)

//go:embed prompts.yaml
var catalogFS embed.FS

type Turn struct {
	Role    string
	Content string
}

type CartLine struct {
	Name      string
	Quantity  int
	Price     float64
	LineTotal float64
}

type ProductLine struct {
	ID          string
	Name        string
	Description string
	Price       float64
}

type PromotionLine struct {
	Name        string
	Description string
}

type StockLine struct {
	Name     string
	Quantity int
}

type Opportunity struct {
	Description string
	Savings     float64
}

// Input is the union of everything the templates read. Each template uses a subset.
type Input struct {
	UserMessage   string
	CustomerName  string
	SessionID     string
	Channel       string
	CurrentIntent string
	LoyaltyTier   string
	LoyaltyPoints int
	TotalSpent    float64
	Recent        []Turn

	Preferences     string
	PastPurchases   int
	BrowsingHistory int

	CartItems []CartLine
	Subtotal  float64
	Tax       float64
	Discount  float64
	Total     float64

	Products   []ProductLine
	Promotions []PromotionLine

	ProductID string
	Quantity  int
	Location  string
	Stock     []StockLine

	OrderTotal       float64
	AvailableCoupons int
	Opportunities    []Opportunity
}

type Prompt struct {
	Name    string
	Version int
	System  string
	User    string
}

func (p Prompt) Fingerprint() string {
	h := sha256.Sum256([]byte(
		strings.TrimSpace(p.Name) + "|" +
			strconv.Itoa(p.Version) + "|" +
			strings.TrimSpace(p.System) + "|" +
			strings.TrimSpace(p.User),
	))
	return hex.EncodeToString(h[:])
}

type catalogFile struct {
	Prompts []struct {
		Name    string `yaml:"name"`
		Version int    `yaml:"version"`
		System  string `yaml:"system"`
		User    string `yaml:"user"`
	} `yaml:"prompts"`
}

type compiled struct {
	version int
	system  *template.Template
	user    *template.Template
}

var (
	loadOnce sync.Once
	registry map[Name]compiled
	loadErr  error
)

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
}

func load() (map[Name]compiled, error) {
	loadOnce.Do(func() {
		raw, err := catalogFS.ReadFile("prompts.yaml")
		if err != nil {
			loadErr = fmt.Errorf("read prompt catalog: %w", err)
			return
		}
		var f catalogFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			loadErr = fmt.Errorf("parse prompt catalog: %w", err)
			return
		}
		out := make(map[Name]compiled, len(f.Prompts))
		for _, p := range f.Prompts {
			name := Name(strings.TrimSpace(p.Name))
			if name == "" {
				loadErr = fmt.Errorf("prompt catalog: entry without name")
				return
			}
			sys, err := template.New(string(name) + ".system").Funcs(funcs).Parse(p.System)
			if err != nil {
				loadErr = fmt.Errorf("prompt %s system: %w", name, err)
				return
			}
			usr, err := template.New(string(name) + ".user").Funcs(funcs).Parse(p.User)
			if err != nil {
				loadErr = fmt.Errorf("prompt %s user: %w", name, err)
				return
			}
			out[name] = compiled{version: p.Version, system: sys, user: usr}
		}
		registry = out
	})
	return registry, loadErr
}

// Names lists every prompt in the embedded catalog.
func Names() []Name {
	reg, err := load()
	if err != nil {
		return nil
	}
	out := make([]Name, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	return out
}

// Build renders the named prompt against in.
func Build(name Name, in Input) (Prompt, error) {
	reg, err := load()
	if err != nil {
		return Prompt{}, err
	}
	t, ok := reg[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	sys, err := render(t.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	usr, err := render(t.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	return Prompt{Name: string(name), Version: t.version, System: sys, User: usr}, nil
}

func render(t *template.Template, in Input) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
