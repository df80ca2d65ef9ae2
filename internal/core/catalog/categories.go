// Package catalog contains the pure business logic for catalog operations.
// This is part of the Functional Core - no I/O, only pure functions.
package catalog

// Categories is the fixed enumeration of element categories, in display order.
var Categories = []string{
	"ASCENSOR",
	"CARPINTERIA",
	"CARPINTERIA INDUSTRIAL",
	"CARTELERIA",
	"CIMENTACION",
	"CUBIERTAS Y FACHADAS",
	"ENCEPADOS",
	"EQUIPAMIENTOS",
	"ESTRUCTURA DE MADERA",
	"ESTRUCTURA METALICA",
	"ESTRUCTURA PREFABRICADA",
	"FONTANERIA",
	"GEOTECNICO",
	"GRUPO ELECTROGENO",
	"INAUFUGACION",
	"INSTALACION BT",
	"INSTALACION DE CLIMA Y VENTILACION",
	"INSTALACION DE FRIO",
	"INSTALACION DE PARARRAYOS",
	"INSTALACION PCI",
	"MOVIMIENTO DE TIERRAS",
	"MURO CORTINA",
	"OBRA CIVIL",
	"PILOTATGE",
	"SANEAMIENTO PLUVIALES CUBIERTA",
	"SANEAMIENTO RESIDUALES",
	"SANEAMIENTO URBANIZACION",
	"SLOTDRAIN",
	"SOLERAS",
	"SUMINISTRO DE CT Y CS",
	"SUMINISTRO SEPARADORES DE HIDROCARBURO",
	"SUMINISTROS DE ILUMINACION",
	"URBANIZACION EXTERIOR",
}

// GroupOther is the group reported for categories outside every group.
const GroupOther = "OTROS"

// CategoryGroups groups categories for export ordering.
var CategoryGroups = map[string][]string{
	"CIVIL_CIMENTACION": {
		"GEOTECNICO",
		"MOVIMIENTO DE TIERRAS",
		"CIMENTACION",
		"PILOTATGE",
		"ENCEPADOS",
		"OBRA CIVIL",
	},
	"ESTRUCTURAS": {
		"ESTRUCTURA DE MADERA",
		"ESTRUCTURA METALICA",
		"ESTRUCTURA PREFABRICADA",
		"SOLERAS",
	},
	"ENVOLVENTE": {
		"CUBIERTAS Y FACHADAS",
		"MURO CORTINA",
		"CARPINTERIA",
		"CARPINTERIA INDUSTRIAL",
		"INAUFUGACION",
	},
	"SANEAMIENTO": {
		"SANEAMIENTO PLUVIALES CUBIERTA",
		"SANEAMIENTO RESIDUALES",
		"SANEAMIENTO URBANIZACION",
		"SLOTDRAIN",
		"SUMINISTRO SEPARADORES DE HIDROCARBURO",
	},
	"FONTANERIA_PCI": {
		"FONTANERIA",
		"INSTALACION PCI",
	},
	"ELECTRICIDAD": {
		"INSTALACION BT",
		"SUMINISTROS DE ILUMINACION",
		"SUMINISTRO DE CT Y CS",
		"INSTALACION DE PARARRAYOS",
		"GRUPO ELECTROGENO",
	},
	"CLIMATIZACION": {
		"INSTALACION DE CLIMA Y VENTILACION",
		"INSTALACION DE FRIO",
	},
	"EQUIPAMIENTO_ACABADOS": {
		"EQUIPAMIENTOS",
		"CARTELERIA",
		"ASCENSOR",
	},
	"URBANIZACION": {
		"URBANIZACION EXTERIOR",
	},
}

var (
	categorySet   = make(map[string]bool, len(Categories))
	categoryGroup = make(map[string]string, len(Categories))
)

func init() {
	for _, c := range Categories {
		categorySet[c] = true
	}
	for group, members := range CategoryGroups {
		for _, c := range members {
			categoryGroup[c] = group
		}
	}
}

// IsValidCategory reports whether category is in the enumeration (exact match).
func IsValidCategory(category string) bool {
	return categorySet[category]
}

// GroupOf returns the group of a category, or GroupOther.
func GroupOf(category string) string {
	if g, ok := categoryGroup[category]; ok {
		return g
	}
	return GroupOther
}
