// Package navigation define el menú de dos niveles de la aplicación y su filtrado
// por permisos del usuario.
package navigation

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

// Item entrada del menú. Module vacío = visible para cualquier usuario autenticado.
type Item struct {
	ID     string        `yaml:"id" json:"id"`
	Label  string        `yaml:"label" json:"label"`
	Path   string        `yaml:"path" json:"path"`
	Icon   string        `yaml:"icon,omitempty" json:"icon,omitempty"`
	Module access.Module `yaml:"module,omitempty" json:"module,omitempty"`
}

// Section grupo con título de ítems.
type Section struct {
	Title string `yaml:"title" json:"title"`
	Items []Item `yaml:"items" json:"items"`
}

// Menu árbol completo: ítems de primer nivel y secciones.
type Menu struct {
	Items    []Item    `yaml:"items" json:"items"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// ViewChecker contrato mínimo que necesita el filtro (lo implementa *access.Resolver).
type ViewChecker interface {
	CanView(ctx context.Context, user *entity.User, module access.Module) (bool, error)
}

// Parse lee un menú en YAML y valida que cada módulo declarado exista.
func Parse(data []byte) (Menu, error) {
	var m Menu
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Menu{}, fmt.Errorf("navigation: decodificar menú: %w", err)
	}
	check := func(it Item) error {
		if it.Module != "" && !it.Module.Valid() {
			return fmt.Errorf("navigation: ítem %q declara un módulo desconocido %q", it.ID, it.Module)
		}
		return nil
	}
	for _, it := range m.Items {
		if err := check(it); err != nil {
			return Menu{}, err
		}
	}
	for _, s := range m.Sections {
		for _, it := range s.Items {
			if err := check(it); err != nil {
				return Menu{}, err
			}
		}
	}
	return m, nil
}

// DefaultMenu devuelve el menú embebido en el binario.
func DefaultMenu() (Menu, error) {
	return Parse(defaultMenuYAML)
}

// Filter poda el menú a lo que user puede ver, preservando el orden original.
// Una sección sin ítems visibles desaparece completa.
func Filter(ctx context.Context, menu Menu, user *entity.User, checker ViewChecker) (Menu, error) {
	visible := func(it Item) (bool, error) {
		if it.Module == "" || user.IsAdmin() {
			return true, nil
		}
		return checker.CanView(ctx, user, it.Module)
	}

	out := Menu{Items: []Item{}, Sections: []Section{}}
	for _, it := range menu.Items {
		ok, err := visible(it)
		if err != nil {
			return Menu{}, err
		}
		if ok {
			out.Items = append(out.Items, it)
		}
	}
	for _, s := range menu.Sections {
		kept := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			ok, err := visible(it)
			if err != nil {
				return Menu{}, err
			}
			if ok {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			out.Sections = append(out.Sections, Section{Title: s.Title, Items: kept})
		}
	}
	return out, nil
}
