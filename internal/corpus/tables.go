package corpus

// CanonTables holds the canonicalization reference data S5 Normalize uses:
// the title-strip list, country alias map, currency symbol map, SI unit
// conversion table, and the CFR title→agency map.
type CanonTables struct {
	TitlePrefixes   []string          // stripped from PERSON canonical forms
	CountryAliases  map[string]ISOCountry
	CurrencySymbols map[string]string // symbol → ISO-4217 code
	Units           map[string]UnitSpec
	CFRAgencies     map[int]string // CFR title → agency
}

// ISOCountry carries the alpha-2/alpha-3 codes attached to a GPE canonical
// entity when the gazetteer subcategory or alias table resolves one.
type ISOCountry struct {
	Alpha2 string
	Alpha3 string
}

// MeasurementCategory enumerates the measurement categories §4.6.1 names.
type MeasurementCategory string

const (
	CategoryLength      MeasurementCategory = "length"
	CategoryWeight      MeasurementCategory = "weight"
	CategoryVolume      MeasurementCategory = "volume"
	CategoryTemperature MeasurementCategory = "temperature"
	CategoryTime        MeasurementCategory = "time"
	CategorySpeed       MeasurementCategory = "speed"
	CategoryArea        MeasurementCategory = "area"
	CategoryAngle       MeasurementCategory = "angle"
	CategoryPercentage  MeasurementCategory = "percentage"
	CategoryCount       MeasurementCategory = "count"
)

// UnitSpec describes how to convert one surface-form unit to its SI
// equivalent. Temperature conversion (non-linear for Fahrenheit) is handled
// specially in internal/normalize when Category == CategoryTemperature and
// the unit is Fahrenheit; Factor/Offset cover the general linear case
// (si = value*Factor + Offset).
type UnitSpec struct {
	Category MeasurementCategory
	SIUnit   string
	Factor   float64
	Offset   float64
}

// DefaultCanonTables returns the built-in canonicalization tables. A real
// deployment may still override parts of this via corpus manifest files;
// the tables returned here are the ones exercised by the seed test corpus
// and the six concrete scenarios.
func DefaultCanonTables() CanonTables {
	return CanonTables{
		TitlePrefixes: []string{
			"Dr.", "Mr.", "Ms.", "Mrs.", "Prof.", "Sir", "Dame", "Rev.", "Hon.",
		},
		CountryAliases: map[string]ISOCountry{
			"united states":        {Alpha2: "US", Alpha3: "USA"},
			"united states of america": {Alpha2: "US", Alpha3: "USA"},
			"usa":                  {Alpha2: "US", Alpha3: "USA"},
			"united kingdom":       {Alpha2: "GB", Alpha3: "GBR"},
			"uk":                   {Alpha2: "GB", Alpha3: "GBR"},
			"canada":               {Alpha2: "CA", Alpha3: "CAN"},
			"france":               {Alpha2: "FR", Alpha3: "FRA"},
			"germany":              {Alpha2: "DE", Alpha3: "DEU"},
			"japan":                {Alpha2: "JP", Alpha3: "JPN"},
		},
		CurrencySymbols: map[string]string{
			"$": "USD",
			"€": "EUR",
			"£": "GBP",
			"¥": "JPY",
		},
		Units: map[string]UnitSpec{
			"in":         {Category: CategoryLength, SIUnit: "m", Factor: 0.0254},
			"in.":        {Category: CategoryLength, SIUnit: "m", Factor: 0.0254},
			"inch":       {Category: CategoryLength, SIUnit: "m", Factor: 0.0254},
			"inches":     {Category: CategoryLength, SIUnit: "m", Factor: 0.0254},
			"ft":         {Category: CategoryLength, SIUnit: "m", Factor: 0.3048},
			"foot":       {Category: CategoryLength, SIUnit: "m", Factor: 0.3048},
			"feet":       {Category: CategoryLength, SIUnit: "m", Factor: 0.3048},
			"yd":         {Category: CategoryLength, SIUnit: "m", Factor: 0.9144},
			"yard":       {Category: CategoryLength, SIUnit: "m", Factor: 0.9144},
			"yards":      {Category: CategoryLength, SIUnit: "m", Factor: 0.9144},
			"mi":         {Category: CategoryLength, SIUnit: "m", Factor: 1609.344},
			"mile":       {Category: CategoryLength, SIUnit: "m", Factor: 1609.344},
			"miles":      {Category: CategoryLength, SIUnit: "m", Factor: 1609.344},
			"mm":         {Category: CategoryLength, SIUnit: "m", Factor: 0.001},
			"millimeter": {Category: CategoryLength, SIUnit: "m", Factor: 0.001},
			"millimeters": {Category: CategoryLength, SIUnit: "m", Factor: 0.001},
			"cm":         {Category: CategoryLength, SIUnit: "m", Factor: 0.01},
			"centimeter": {Category: CategoryLength, SIUnit: "m", Factor: 0.01},
			"centimeters": {Category: CategoryLength, SIUnit: "m", Factor: 0.01},
			"km":         {Category: CategoryLength, SIUnit: "m", Factor: 1000},
			"kilometer":  {Category: CategoryLength, SIUnit: "m", Factor: 1000},
			"kilometers": {Category: CategoryLength, SIUnit: "m", Factor: 1000},
			"m":          {Category: CategoryLength, SIUnit: "m", Factor: 1},
			"meter":      {Category: CategoryLength, SIUnit: "m", Factor: 1},
			"meters":     {Category: CategoryLength, SIUnit: "m", Factor: 1},

			"kg":        {Category: CategoryWeight, SIUnit: "kg", Factor: 1},
			"kilogram":  {Category: CategoryWeight, SIUnit: "kg", Factor: 1},
			"kilograms": {Category: CategoryWeight, SIUnit: "kg", Factor: 1},
			"g":         {Category: CategoryWeight, SIUnit: "kg", Factor: 0.001},
			"gram":      {Category: CategoryWeight, SIUnit: "kg", Factor: 0.001},
			"grams":     {Category: CategoryWeight, SIUnit: "kg", Factor: 0.001},
			"lb":        {Category: CategoryWeight, SIUnit: "kg", Factor: 0.45359237},
			"lbs":       {Category: CategoryWeight, SIUnit: "kg", Factor: 0.45359237},
			"pound":     {Category: CategoryWeight, SIUnit: "kg", Factor: 0.45359237},
			"pounds":    {Category: CategoryWeight, SIUnit: "kg", Factor: 0.45359237},
			"oz":        {Category: CategoryWeight, SIUnit: "kg", Factor: 0.028349523},
			"ounce":     {Category: CategoryWeight, SIUnit: "kg", Factor: 0.028349523},
			"ounces":    {Category: CategoryWeight, SIUnit: "kg", Factor: 0.028349523},

			"l":        {Category: CategoryVolume, SIUnit: "l", Factor: 1},
			"liter":    {Category: CategoryVolume, SIUnit: "l", Factor: 1},
			"liters":   {Category: CategoryVolume, SIUnit: "l", Factor: 1},
			"gal":      {Category: CategoryVolume, SIUnit: "l", Factor: 3.785411784},
			"gallon":   {Category: CategoryVolume, SIUnit: "l", Factor: 3.785411784},
			"gallons":  {Category: CategoryVolume, SIUnit: "l", Factor: 3.785411784},

			"celsius":    {Category: CategoryTemperature, SIUnit: "c", Factor: 1, Offset: 0},
			"°c":    {Category: CategoryTemperature, SIUnit: "c", Factor: 1, Offset: 0},
			"fahrenheit": {Category: CategoryTemperature, SIUnit: "c", Factor: 1, Offset: 0}, // handled specially (non-linear)
			"°f":    {Category: CategoryTemperature, SIUnit: "c", Factor: 1, Offset: 0},

			"mph":  {Category: CategorySpeed, SIUnit: "m/s", Factor: 0.44704},
			"km/h": {Category: CategorySpeed, SIUnit: "m/s", Factor: 0.277778},
			"m/s":  {Category: CategorySpeed, SIUnit: "m/s", Factor: 1},

			"%":         {Category: CategoryPercentage, SIUnit: "ratio", Factor: 0.01},
			"percent":   {Category: CategoryPercentage, SIUnit: "ratio", Factor: 0.01},
			"percentage": {Category: CategoryPercentage, SIUnit: "ratio", Factor: 0.01},
		},
		CFRAgencies: map[int]string{
			21: "FDA",
			29: "OSHA",
			40: "EPA",
			49: "DOT",
		},
	}
}
