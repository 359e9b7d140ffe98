package core

// Pair is one entry of an ordered source-column → target-column mapping.
type Pair struct {
	Source string
	Target string
}

// MetadataColumns names the engine-owned columns on the live and temp
// tables. The zero value is invalid; use DefaultMetadataColumns.
type MetadataColumns struct {
	ID            string
	ContentHash   string
	CreatedAt     string
	UpdatedAt     string
	BatchRevision string
}

// DefaultMetadataColumns returns the spec-mandated default metadata column
// names.
func DefaultMetadataColumns() MetadataColumns {
	return MetadataColumns{
		ID:            "id",
		ContentHash:   "content_hash",
		CreatedAt:     "created_at",
		UpdatedAt:     "updated_at",
		BatchRevision: "batch_revision",
	}
}

// DefaultPlaceholderDatetime is substituted whenever a non-nullable
// datetime source column is empty or unparseable.
const DefaultPlaceholderDatetime = "2222-02-22 00:00:00"

// DefaultHashColumnLength is the length of a lowercase hex SHA-256 digest.
const DefaultHashColumnLength = 64

// ConfigParams is the set of fields a caller supplies to build a Config.
// Fields left at their zero value receive the documented default.
type ConfigParams struct {
	SourceConnection Connection
	TargetConnection Connection

	SourceObjectName     string
	TargetLiveTableName  string
	TargetTempTableName  string

	PrimaryKeyColumnMap               []Pair
	DataColumnMapping                 []Pair
	ColumnsForContentHash             []string
	NonNullableDatetimeSourceColumns  []string

	MetadataColumns         MetadataColumns
	PlaceholderDatetime     string
	TargetIDColumnType      SemanticType
	TargetHashColumnType    SemanticType
	TargetHashColumnLength  int

	Logger Logger
}

// Config is the immutable description of one sync invocation. Build it with
// NewConfig, which enforces every invariant in this file at construction;
// a Config that exists is known to be internally consistent.
type Config struct {
	SourceConnection Connection
	TargetConnection Connection

	SourceObjectName    string
	TargetLiveTableName string
	TargetTempTableName string

	PrimaryKeyColumnMap              []Pair
	DataColumnMapping                []Pair
	ColumnsForContentHash            []string
	NonNullableDatetimeSourceColumns map[string]bool

	MetadataColumns        MetadataColumns
	PlaceholderDatetime    string
	TargetIDColumnType     SemanticType
	TargetHashColumnType   SemanticType
	TargetHashColumnLength int

	Logger Logger
}

// NewConfig validates params and returns an immutable Config, or the first
// *ConfigurationError encountered. No partially-valid Config is ever
// returned.
func NewConfig(p ConfigParams) (*Config, error) {
	if p.SourceConnection == nil {
		return nil, NewConfigurationError("sourceConnection", "must not be nil")
	}
	if p.TargetConnection == nil {
		return nil, NewConfigurationError("targetConnection", "must not be nil")
	}
	if p.SourceObjectName == "" {
		return nil, NewConfigurationError("sourceObjectName", "must not be empty")
	}
	if p.TargetLiveTableName == "" {
		return nil, NewConfigurationError("targetLiveTableName", "must not be empty")
	}
	if p.TargetTempTableName == "" {
		return nil, NewConfigurationError("targetTempTableName", "must not be empty")
	}
	if len(p.PrimaryKeyColumnMap) == 0 {
		return nil, NewConfigurationError("primaryKeyColumnMap", "must contain at least one pair")
	}
	if len(p.DataColumnMapping) == 0 {
		return nil, NewConfigurationError("dataColumnMapping", "must not be empty")
	}
	if len(p.ColumnsForContentHash) == 0 {
		return nil, NewConfigurationError("columnsForContentHash", "must not be empty")
	}

	dataBySource := make(map[string]string, len(p.DataColumnMapping))
	for _, pair := range p.DataColumnMapping {
		if pair.Source == "" || pair.Target == "" {
			return nil, NewConfigurationError("dataColumnMapping", "source and target names must be non-empty")
		}
		dataBySource[pair.Source] = pair.Target
	}

	for _, pk := range p.PrimaryKeyColumnMap {
		if pk.Source == "" || pk.Target == "" {
			return nil, NewConfigurationError("primaryKeyColumnMap", "source and target names must be non-empty")
		}
		target, ok := dataBySource[pk.Source]
		if !ok {
			return nil, NewConfigurationError("primaryKeyColumnMap", "source column "+pk.Source+" is not present in dataColumnMapping")
		}
		if target != pk.Target {
			return nil, NewConfigurationError("primaryKeyColumnMap", "target name for "+pk.Source+" disagrees with dataColumnMapping")
		}
	}

	for _, col := range p.ColumnsForContentHash {
		if _, ok := dataBySource[col]; !ok {
			return nil, NewConfigurationError("columnsForContentHash", "source column "+col+" is not present in dataColumnMapping")
		}
	}

	nonNullableDatetime := make(map[string]bool, len(p.NonNullableDatetimeSourceColumns))
	for _, col := range p.NonNullableDatetimeSourceColumns {
		if _, ok := dataBySource[col]; !ok {
			return nil, NewConfigurationError("nonNullableDatetimeSourceColumns", "source column "+col+" is not present in dataColumnMapping")
		}
		nonNullableDatetime[col] = true
	}

	targetNames := make(map[string]bool, len(p.DataColumnMapping))
	for _, pair := range p.DataColumnMapping {
		if targetNames[pair.Target] {
			return nil, NewConfigurationError("dataColumnMapping", "duplicate target column name "+pair.Target)
		}
		targetNames[pair.Target] = true
	}

	metadata := p.MetadataColumns
	if metadata == (MetadataColumns{}) {
		metadata = DefaultMetadataColumns()
	}
	for _, name := range []string{metadata.ID, metadata.ContentHash, metadata.CreatedAt, metadata.UpdatedAt, metadata.BatchRevision} {
		if name == "" {
			return nil, NewConfigurationError("metadataColumns", "metadata column names must be non-empty")
		}
		if targetNames[name] {
			return nil, NewConfigurationError("metadataColumns", "metadata column name "+name+" collides with a data column")
		}
	}

	placeholder := p.PlaceholderDatetime
	if placeholder == "" {
		placeholder = DefaultPlaceholderDatetime
	}

	idType := p.TargetIDColumnType
	if idType == "" {
		idType = TypeBigInt
	}
	hashType := p.TargetHashColumnType
	if hashType == "" {
		hashType = TypeString
	}
	hashLen := p.TargetHashColumnLength
	if hashLen == 0 {
		hashLen = DefaultHashColumnLength
	}

	return &Config{
		SourceConnection:                 p.SourceConnection,
		TargetConnection:                 p.TargetConnection,
		SourceObjectName:                 p.SourceObjectName,
		TargetLiveTableName:              p.TargetLiveTableName,
		TargetTempTableName:              p.TargetTempTableName,
		PrimaryKeyColumnMap:              p.PrimaryKeyColumnMap,
		DataColumnMapping:                p.DataColumnMapping,
		ColumnsForContentHash:            p.ColumnsForContentHash,
		NonNullableDatetimeSourceColumns: nonNullableDatetime,
		MetadataColumns:                  metadata,
		PlaceholderDatetime:              placeholder,
		TargetIDColumnType:               idType,
		TargetHashColumnType:             hashType,
		TargetHashColumnLength:           hashLen,
		Logger:                           p.Logger,
	}, nil
}

// DataColumnTargets returns the target column names in declared order.
func (c *Config) DataColumnTargets() []string {
	names := make([]string, len(c.DataColumnMapping))
	for i, pair := range c.DataColumnMapping {
		names[i] = pair.Target
	}
	return names
}

// IsPrimaryKeySource reports whether source is one of the PK source columns.
func (c *Config) IsPrimaryKeySource(source string) bool {
	for _, pk := range c.PrimaryKeyColumnMap {
		if pk.Source == source {
			return true
		}
	}
	return false
}

// NonPrimaryKeyDataColumns returns the DataColumnMapping pairs that are not
// part of the business primary key, in declared order.
func (c *Config) NonPrimaryKeyDataColumns() []Pair {
	var out []Pair
	for _, pair := range c.DataColumnMapping {
		if !c.IsPrimaryKeySource(pair.Source) {
			out = append(out, pair)
		}
	}
	return out
}

// FirstPrimaryKeyTarget returns the target column name of the first
// declared PK pair, used as the null probe in delete/insert detection.
func (c *Config) FirstPrimaryKeyTarget() string {
	return c.PrimaryKeyColumnMap[0].Target
}

// Log mirrors a record to the configured Logger, if any. Safe to call on a
// Config with a nil Logger.
func (c *Config) Log(level LogLevel, msg string, fields map[string]any) {
	if c.Logger != nil {
		c.Logger.Log(level, msg, fields)
	}
}

// TargetNameForSource returns the target column name mapped from a source
// column name, if any.
func (c *Config) TargetNameForSource(source string) (string, bool) {
	for _, pair := range c.DataColumnMapping {
		if pair.Source == source {
			return pair.Target, true
		}
	}
	return "", false
}
