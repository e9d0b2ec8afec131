// Package schema builds the schema.org JSON-LD description of the site and
// injects it into the page head.
package schema

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"portfolio/dom"
)

// ScriptType is the MIME type of JSON-LD script elements.
const ScriptType = "application/ld+json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Person describes the site owner.
type Person struct {
	Name        string   `yaml:"name" koanf:"name"`
	JobTitle    string   `yaml:"job_title" koanf:"job_title"`
	Description string   `yaml:"description" koanf:"description"`
	Image       string   `yaml:"image" koanf:"image"`
	SameAs      []string `yaml:"same_as" koanf:"same_as"`
	KnowsAbout  []string `yaml:"knows_about" koanf:"knows_about"`
}

// Profile is the site identity the graph is generated from.
type Profile struct {
	URL      string `yaml:"url" koanf:"url"`
	SiteName string `yaml:"site_name" koanf:"site_name"`
	PageName string `yaml:"page_name" koanf:"page_name"`
	Language string `yaml:"language" koanf:"language"`
	Person   Person `yaml:"person" koanf:"person"`
}

// DefaultProfile returns the portfolio owner's profile.
func DefaultProfile() Profile {
	return Profile{
		URL:      "https://www.luisneves.dev/",
		SiteName: "Luis Neves | Portfólio",
		PageName: "Luis Neves | Desenvolvedor Fullstack e Front-end",
		Language: "pt-BR",
		Person: Person{
			Name:        "Luis Neves",
			JobTitle:    "Desenvolvedor Fullstack e Front-end",
			Description: "Desenvolvedor fullstack especializado em interfaces web performáticas, acessíveis e bem estruturadas.",
			Image:       "https://www.luisneves.dev/assets/images/og-image.png",
			SameAs: []string{
				"https://www.linkedin.com/in/luisneves-dev/",
				"https://github.com/luisoneves",
			},
			KnowsAbout: []string{"HTML", "CSS", "JavaScript", "TypeScript", "SEO técnico", "Acessibilidade"},
		},
	}
}

// Ref points at another node of the graph.
type Ref struct {
	ID string `json:"@id"`
}

type WebSite struct {
	Type       string `json:"@type"`
	ID         string `json:"@id"`
	URL        string `json:"url"`
	Name       string `json:"name"`
	InLanguage string `json:"inLanguage"`
	Publisher  Ref    `json:"publisher"`
}

type ProfilePage struct {
	Type       string `json:"@type"`
	ID         string `json:"@id"`
	URL        string `json:"url"`
	Name       string `json:"name"`
	InLanguage string `json:"inLanguage"`
	IsPartOf   Ref    `json:"isPartOf"`
	About      Ref    `json:"about"`
}

type PersonNode struct {
	Type        string   `json:"@type"`
	ID          string   `json:"@id"`
	Name        string   `json:"name"`
	JobTitle    string   `json:"jobTitle"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
	KnowsAbout  []string `json:"knowsAbout,omitempty"`
}

// Graph is the top-level JSON-LD document.
type Graph struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

// Injector writes the structured data of a profile into documents.
type Injector struct {
	profile Profile
	logger  *zap.Logger
}

// NewInjector creates an injector for p.
func NewInjector(p Profile, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{profile: p, logger: logger}
}

// Generate builds the WebSite, ProfilePage and Person graph.
func (i *Injector) Generate() Graph {
	p := i.profile
	base := strings.TrimRight(p.URL, "/") + "/"
	website := Ref{ID: base + "#website"}
	profile := Ref{ID: base + "#profile"}
	person := Ref{ID: base + "#person"}

	return Graph{
		Context: "https://schema.org",
		Graph: []any{
			WebSite{
				Type:       "WebSite",
				ID:         website.ID,
				URL:        base,
				Name:       p.SiteName,
				InLanguage: p.Language,
				Publisher:  person,
			},
			ProfilePage{
				Type:       "ProfilePage",
				ID:         profile.ID,
				URL:        base,
				Name:       p.PageName,
				InLanguage: p.Language,
				IsPartOf:   website,
				About:      person,
			},
			PersonNode{
				Type:        "Person",
				ID:          person.ID,
				Name:        p.Person.Name,
				JobTitle:    p.Person.JobTitle,
				URL:         base,
				Description: p.Person.Description,
				Image:       p.Person.Image,
				SameAs:      p.Person.SameAs,
				KnowsAbout:  p.Person.KnowsAbout,
			},
		},
	}
}

// Marshal encodes the graph with two-space indentation. HTML-significant
// characters are escaped so the result is safe inside a script element.
func (i *Injector) Marshal() ([]byte, error) {
	return json.MarshalIndent(i.Generate(), "", "  ")
}

// Inject appends a JSON-LD script element to the head of doc. When the
// document already carries one it logs a warning and reports false.
func (i *Injector) Inject(doc *dom.Document) (bool, error) {
	if doc.QuerySelector(`script[type="`+ScriptType+`"]`) != nil {
		i.logger.Warn("structured data already injected, skipping")
		return false, nil
	}

	data, err := i.Marshal()
	if err != nil {
		return false, fmt.Errorf("marshal structured data: %w", err)
	}

	script := doc.CreateElement("script")
	script.SetAttr("type", ScriptType)
	script.SetRawHTML(string(data))
	doc.Head().AppendChild(script)
	return true, nil
}
