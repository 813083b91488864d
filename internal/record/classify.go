package record

import (
	"strings"

	"arcompras/comprasworker/helpers"
)

// defaultTICKeywords marks a process as TIC only on reasonably specific
// terms. Bare "pc" is deliberately absent, "10 pc" usually means units.
var defaultTICKeywords = []string{
	// Equipamiento informático / hardware
	"computadora",
	"computadoras",
	"notebook",
	"notebooks",
	"laptop",
	"laptops",
	"pc de escritorio",
	"equipo informático",
	"equipo informatico",
	"equipos informáticos",
	"equipos informaticos",
	"equipamiento informático",
	"equipamiento informatico",
	"servidor",
	"servidores",
	"impresora",
	"impresoras",
	"multifunción",
	"multifuncion",
	"plotter",
	"scanner",
	"escáner",
	"monitor",
	"monitores",
	"teclado",
	"teclados",
	"mouse",
	"mouses",
	"disco rígido",
	"discos rígidos",
	"disco duro",
	"discos duros",
	"ssd",

	// Redes y comunicaciones
	"switch",
	"switches",
	"router",
	"routers",
	"firewall",
	"firewalls",
	"access point",
	"punto de acceso",
	"wifi",
	"redes informáticas",
	"redes informaticas",
	"cableado estructurado",

	// Infraestructura / datacenter
	"datacenter",
	"data center",
	"virtualización",
	"virtualizacion",
	"storage",
	"cabina de almacenamiento",
	"infraestructura tecnológica",
	"infraestructura tecnologica",

	// Software y licencias
	"software",
	"sistema informático",
	"sistema informatico",
	"sistemas informáticos",
	"sistemas informaticos",
	"programa informático",
	"programa informatico",
	"programas informáticos",
	"programas informaticos",
	"licencia de software",
	"licencias de software",
	"antivirus",
	"licencias de uso de software",
	"suscripción de software",
	"suscripcion de software",

	// Desarrollo y mantenimiento de software
	"desarrollo de software",
	"desarrollo de sistemas",
	"desarrollo informático",
	"desarrollo informatico",
	"mantenimiento de software",
	"mantenimiento de sistemas",
	"implementación de software",
	"implementacion de software",

	// Servicios TIC
	"servicios informáticos",
	"servicios informaticos",
	"servicios de informática",
	"servicios de informatica",
	"soporte técnico informático",
	"soporte tecnico informatico",
	"servicio técnico informático",
	"servicio tecnico informatico",

	// Cloud / hosting
	"hosting",
	"cloud",
	"nube",
	"saas",
	"iaas",
	"paas",

	// Frases paraguas
	"tecnologías de la información",
	"tecnologias de la informacion",
}

// DefaultTICKeywords returns a copy of the built-in keyword list.
func DefaultTICKeywords() []string {
	out := make([]string, len(defaultTICKeywords))
	copy(out, defaultTICKeywords)
	return out
}

// Classifier decides whether a process is TIC-related by accent and
// case-insensitive substring match against a keyword list.
type Classifier struct {
	keywords []string
}

// NewClassifier builds a classifier. A nil or empty keyword list falls back
// to the built-in one. Keywords shorter than three characters are discarded,
// they match far too loosely as substrings.
func NewClassifier(keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = defaultTICKeywords
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		folded := helpers.Fold(strings.TrimSpace(kw))
		if len(folded) <= 2 {
			continue
		}
		normalized = append(normalized, folded)
	}
	return &Classifier{keywords: normalized}
}

// IsTIC reports whether the text mentions any configured keyword.
func (c *Classifier) IsTIC(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	folded := helpers.Fold(text)
	for _, kw := range c.keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
