package areas

// Area describes one accreditation dashboard area. Each area maps to the
// root folder carrying the same name.
type Area struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
}

// areaFile is the on-disk shape of the embedded registry.
type areaFile struct {
	Areas []Area `yaml:"areas"`
}
