package property

import "strings"

// Locality is a Mumbai neighbourhood used for filtering listings.
type Locality string

type localityInfo struct {
	Value Locality
	Label string
}

var localities = []localityInfo{
	{"ANDHERI_EAST", "Andheri East"},
	{"ANDHERI_WEST", "Andheri West"},
	{"BANDRA_EAST", "Bandra East"},
	{"BANDRA_WEST", "Bandra West"},
	{"BORIVALI_EAST", "Borivali East"},
	{"BORIVALI_WEST", "Borivali West"},
	{"CHEMBUR", "Chembur"},
	{"DADAR_EAST", "Dadar East"},
	{"DADAR_WEST", "Dadar West"},
	{"GHATKOPAR_EAST", "Ghatkopar East"},
	{"GHATKOPAR_WEST", "Ghatkopar West"},
	{"GOREGAON_EAST", "Goregaon East"},
	{"GOREGAON_WEST", "Goregaon West"},
	{"JUHU", "Juhu"},
	{"KANDIVALI_EAST", "Kandivali East"},
	{"KANDIVALI_WEST", "Kandivali West"},
	{"KHAR_WEST", "Khar West"},
	{"KURLA_EAST", "Kurla East"},
	{"KURLA_WEST", "Kurla West"},
	{"LOWER_PAREL", "Lower Parel"},
	{"MALAD_EAST", "Malad East"},
	{"MALAD_WEST", "Malad West"},
	{"MIRA_ROAD", "Mira Road"},
	{"MULUND_EAST", "Mulund East"},
	{"MULUND_WEST", "Mulund West"},
	{"NAVI_MUMBAI", "Navi Mumbai"},
	{"POWAI", "Powai"},
	{"SANTACRUZ_EAST", "Santacruz East"},
	{"SANTACRUZ_WEST", "Santacruz West"},
	{"THANE_EAST", "Thane East"},
	{"THANE_WEST", "Thane West"},
	{"VERSOVA", "Versova"},
	{"VIKHROLI_EAST", "Vikhroli East"},
	{"VIKHROLI_WEST", "Vikhroli West"},
	{"VILE_PARLE_EAST", "Vile Parle East"},
	{"VILE_PARLE_WEST", "Vile Parle West"},
	{"WORLI", "Worli"},
}

// Localities returns every locality value in display order.
func Localities() []Locality {
	out := make([]Locality, len(localities))
	for i, l := range localities {
		out[i] = l.Value
	}
	return out
}

// Label returns the display name, or the raw value when unknown.
func (l Locality) Label() string {
	for _, info := range localities {
		if info.Value == l {
			return info.Label
		}
	}
	return string(l)
}

// Valid reports whether l is a known locality value.
func (l Locality) Valid() bool {
	for _, info := range localities {
		if info.Value == l {
			return true
		}
	}
	return false
}

// ParseLocality accepts a locality value ("BANDRA_WEST") or label
// ("Bandra West"), ignoring case, and returns the value.
func ParseLocality(s string) (Locality, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, info := range localities {
		if strings.EqualFold(s, string(info.Value)) || strings.EqualFold(s, info.Label) {
			return info.Value, true
		}
	}
	return "", false
}

// LocalitiesMatching returns the localities whose label contains text,
// ignoring case. Used to let free-text search hit enum-valued columns.
func LocalitiesMatching(text string) []Locality {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	var out []Locality
	for _, info := range localities {
		if strings.Contains(strings.ToLower(info.Label), text) {
			out = append(out, info.Value)
		}
	}
	return out
}
