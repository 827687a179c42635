package geo

import "strings"

type Place struct {
	Name  string
	Coord Coordinate
}

// gazetteer is searched in order; the first place whose leading word occurs
// in the query wins.
var gazetteer = []Place{
	{"gandhi nagar", Coordinate{13.007, 80.249}},
	{"cuddalore", Coordinate{11.75, 79.77}},
	{"velachery", Coordinate{12.978, 80.221}},
	{"marina beach", Coordinate{13.05, 80.28}},
	{"ennore", Coordinate{13.21, 80.32}},
	{"central railway station", Coordinate{13.082, 80.275}},
	{"nagapattinam", Coordinate{10.76, 79.84}},
	{"mettur dam", Coordinate{11.79, 77.80}},
	{"kalpakkam", Coordinate{12.56, 80.17}},
	{"nilgiris", Coordinate{11.41, 76.73}},
	{"t.nagar", Coordinate{13.03, 80.23}},
	{"tambaram", Coordinate{12.92, 80.11}},
	{"mylapore", Coordinate{13.03, 80.27}},
	{"pamban bridge", Coordinate{9.28, 79.20}},
	{"sathyamangalam", Coordinate{11.50, 77.24}},
	{"kudankulam", Coordinate{8.16, 77.71}},
	{"neyveli", Coordinate{11.60, 79.48}},
	{"rameswaram", Coordinate{9.28, 79.31}},
	{"sriperumbudur", Coordinate{12.96, 79.94}},
	{"ranipet", Coordinate{12.93, 79.33}},
	{"manali", Coordinate{13.15, 80.27}},
	{"ambattur", Coordinate{13.11, 80.16}},
	{"hosur", Coordinate{12.74, 77.82}},
	{"ooty", Coordinate{11.41, 76.70}},
	{"vellore", Coordinate{12.91, 79.13}},
	{"karaikal", Coordinate{10.92, 79.83}},
	{"trichy", Coordinate{10.79, 78.70}},
	{"tarapur", Coordinate{19.82, 72.65}},
	{"ramanathapuram", Coordinate{9.36, 78.83}},
	{"villupuram", Coordinate{11.94, 79.49}},
	{"madurai", Coordinate{9.92, 78.12}},
	{"thanjavur", Coordinate{10.78, 79.13}},
	{"avadi", Coordinate{13.11, 80.10}},
	{"pattukkottai", Coordinate{10.42, 79.31}},
	{"coimbatore", Coordinate{11.01, 76.95}},
	{"korukkupet", Coordinate{13.12, 80.28}},
	{"poonamallee", Coordinate{13.05, 80.09}},
	{"arakkonam", Coordinate{13.08, 79.67}},
	{"adyar", Coordinate{13.00, 80.25}},
	{"saidapet", Coordinate{13.02, 80.22}},
	{"kilpauk medical college", Coordinate{13.08, 80.24}},
	{"mudumalai", Coordinate{11.58, 76.62}},
	{"chennai port", Coordinate{13.09, 80.29}},
}

// LookupPlace finds the first gazetteer place whose leading word is a
// substring of text, ignoring case.
func LookupPlace(text string) (Place, bool) {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return Place{}, false
	}
	for _, p := range gazetteer {
		head, _, _ := strings.Cut(p.Name, " ")
		if strings.Contains(text, head) {
			return p, true
		}
	}
	return Place{}, false
}
