package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockElementRepository implements secondary.ElementRepository for testing.
type mockElementRepository struct {
	elements  map[string]*secondary.ElementRecord
	createErr error
}

func newMockElementRepository() *mockElementRepository {
	return &mockElementRepository{elements: make(map[string]*secondary.ElementRecord)}
}

func (m *mockElementRepository) Create(ctx context.Context, element *secondary.ElementRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if element.ID == "" {
		element.ID = fmt.Sprintf("ELEM-%03d", len(m.elements)+1)
	}
	m.elements[element.ID] = element
	return nil
}

func (m *mockElementRepository) GetByID(ctx context.Context, id string) (*secondary.ElementRecord, error) {
	if e, ok := m.elements[id]; ok {
		return e, nil
	}
	return nil, errkind.NotFound("element", id)
}

func (m *mockElementRepository) GetByCode(ctx context.Context, code string) (*secondary.ElementRecord, error) {
	for _, e := range m.elements {
		if e.Code == code {
			return e, nil
		}
	}
	return nil, errkind.NotFound("element", code)
}

func (m *mockElementRepository) List(ctx context.Context, filters secondary.ElementFilters) ([]*secondary.ElementRecord, error) {
	var result []*secondary.ElementRecord
	for _, e := range m.elements {
		if filters.Category == "" || e.Category == filters.Category {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockElementRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByCode(ctx, code)
	return err == nil, nil
}

func (m *mockElementRepository) UpdatePrice(ctx context.Context, id string, price *float64, updatedBy string) error {
	e, ok := m.elements[id]
	if !ok {
		return errkind.NotFound("element", id)
	}
	e.Price = price
	e.UpdatedBy = updatedBy
	return nil
}

// mockVariableRepository implements secondary.VariableRepository for testing.
type mockVariableRepository struct {
	variables map[string]*secondary.VariableRecord
	options   map[string][]*secondary.OptionRecord // variableID -> options
	nextOpt   int
}

func newMockVariableRepository() *mockVariableRepository {
	return &mockVariableRepository{
		variables: make(map[string]*secondary.VariableRecord),
		options:   make(map[string][]*secondary.OptionRecord),
	}
}

func (m *mockVariableRepository) CreateWithOptions(ctx context.Context, variable *secondary.VariableRecord, options []*secondary.OptionRecord) error {
	if variable.ID == "" {
		variable.ID = fmt.Sprintf("VAR-%03d", len(m.variables)+1)
	}
	m.variables[variable.ID] = variable
	for _, o := range options {
		o.VariableID = variable.ID
		m.assignOptionID(o)
		m.options[variable.ID] = append(m.options[variable.ID], o)
	}
	return nil
}

func (m *mockVariableRepository) GetByID(ctx context.Context, id string) (*secondary.VariableRecord, error) {
	if v, ok := m.variables[id]; ok {
		return v, nil
	}
	return nil, errkind.NotFound("variable", id)
}

func (m *mockVariableRepository) ListByElement(ctx context.Context, elementID string) ([]*secondary.VariableRecord, error) {
	var result []*secondary.VariableRecord
	for _, v := range m.variables {
		if v.ElementID == elementID {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockVariableRepository) NameExists(ctx context.Context, elementID, name string) (bool, error) {
	for _, v := range m.variables {
		if v.ElementID == elementID && v.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVariableRepository) AddOption(ctx context.Context, option *secondary.OptionRecord) error {
	if option.IsDefault {
		for _, o := range m.options[option.VariableID] {
			o.IsDefault = false
		}
	}
	m.assignOptionID(option)
	m.options[option.VariableID] = append(m.options[option.VariableID], option)
	return nil
}

func (m *mockVariableRepository) ListOptions(ctx context.Context, variableID string) ([]*secondary.OptionRecord, error) {
	return m.options[variableID], nil
}

func (m *mockVariableRepository) OptionValueExists(ctx context.Context, variableID, value string) (bool, error) {
	for _, o := range m.options[variableID] {
		if o.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVariableRepository) SetDefaultOption(ctx context.Context, variableID, optionID string) error {
	found := false
	for _, o := range m.options[variableID] {
		if o.ID == optionID {
			found = true
		}
	}
	if !found {
		return errkind.NotFound("option", optionID)
	}
	for _, o := range m.options[variableID] {
		o.IsDefault = o.ID == optionID
	}
	return nil
}

func (m *mockVariableRepository) assignOptionID(o *secondary.OptionRecord) {
	m.nextOpt++
	o.ID = fmt.Sprintf("OPT-%03d", m.nextOpt)
	if o.Label == "" {
		o.Label = o.Value
	}
}

// mockVersionRepository implements secondary.VersionRepository for testing.
type mockVersionRepository struct {
	versions       map[string]*secondary.VersionRecord
	approvals      map[string][]*secondary.ApprovalRecord
	mappings       map[string][]*secondary.MappingRecord
	applyErr       error
	lastTransition *secondary.TransitionRecord
	nextMappingID  int
}

func newMockVersionRepository() *mockVersionRepository {
	return &mockVersionRepository{
		versions:  make(map[string]*secondary.VersionRecord),
		approvals: make(map[string][]*secondary.ApprovalRecord),
		mappings:  make(map[string][]*secondary.MappingRecord),
	}
}

func (m *mockVersionRepository) Create(ctx context.Context, version *secondary.VersionRecord) error {
	if version.ID == "" {
		version.ID = fmt.Sprintf("VER-%03d", len(m.versions)+1)
	}
	number := 0
	for _, v := range m.versions {
		if v.ElementID == version.ElementID && v.VersionNumber > number {
			number = v.VersionNumber
		}
	}
	version.VersionNumber = number + 1
	m.versions[version.ID] = version
	return nil
}

func (m *mockVersionRepository) GetByID(ctx context.Context, id string) (*secondary.VersionRecord, error) {
	if v, ok := m.versions[id]; ok {
		return v, nil
	}
	return nil, errkind.NotFound("version", id)
}

func (m *mockVersionRepository) ListByElement(ctx context.Context, elementID string) ([]*secondary.VersionRecord, error) {
	var result []*secondary.VersionRecord
	for _, v := range m.versions {
		if v.ElementID == elementID {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VersionNumber > result[j].VersionNumber })
	return result, nil
}

func (m *mockVersionRepository) ListByStates(ctx context.Context, states []string) ([]*secondary.VersionRecord, error) {
	want := make(map[string]bool, len(states))
	for _, s := range states {
		want[s] = true
	}
	var result []*secondary.VersionRecord
	for _, v := range m.versions {
		if want[v.State] {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockVersionRepository) GetActive(ctx context.Context, elementID string) (*secondary.VersionRecord, error) {
	for _, v := range m.versions {
		if v.ElementID == elementID && v.IsActive {
			return v, nil
		}
	}
	return nil, errkind.NotFound("active version of", elementID)
}

func (m *mockVersionRepository) ApplyTransition(ctx context.Context, t *secondary.TransitionRecord) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	v, ok := m.versions[t.VersionID]
	if !ok {
		return errkind.NotFound("version", t.VersionID)
	}
	if v.State != t.FromState {
		return fmt.Errorf("%w: version %s moved", errkind.ErrConflict, t.VersionID)
	}
	if t.Activate {
		for _, other := range m.versions {
			if other.ElementID == t.ElementID {
				other.IsActive = false
			}
		}
		v.IsActive = true
	}
	v.State = t.ToState
	if t.Approval != nil {
		a := *t.Approval
		a.VersionID, a.FromState, a.ToState = t.VersionID, t.FromState, t.ToState
		m.approvals[t.VersionID] = append(m.approvals[t.VersionID], &a)
	}
	m.lastTransition = t
	return nil
}

func (m *mockVersionRepository) ListApprovals(ctx context.Context, versionID string) ([]*secondary.ApprovalRecord, error) {
	return m.approvals[versionID], nil
}

func (m *mockVersionRepository) CreateMapping(ctx context.Context, mapping *secondary.MappingRecord) error {
	for _, existing := range m.mappings[mapping.VersionID] {
		if existing.Placeholder == mapping.Placeholder || existing.Position == mapping.Position {
			return errkind.Duplicate("mapping", mapping.Placeholder)
		}
	}
	m.nextMappingID++
	mapping.ID = fmt.Sprint(m.nextMappingID)
	m.mappings[mapping.VersionID] = append(m.mappings[mapping.VersionID], mapping)
	return nil
}

func (m *mockVersionRepository) ListMappings(ctx context.Context, versionID string) ([]*secondary.MappingRecord, error) {
	result := append([]*secondary.MappingRecord(nil), m.mappings[versionID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// mockProjectRepository implements secondary.ProjectRepository for testing.
type mockProjectRepository struct {
	projects map[string]*secondary.ProjectRecord
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[string]*secondary.ProjectRecord)}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *secondary.ProjectRecord) error {
	if project.ID == "" {
		project.ID = fmt.Sprintf("PROJ-%03d", len(m.projects)+1)
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, errkind.NotFound("project", id)
}

func (m *mockProjectRepository) GetByCode(ctx context.Context, code string) (*secondary.ProjectRecord, error) {
	for _, p := range m.projects {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, errkind.NotFound("project", code)
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	var result []*secondary.ProjectRecord
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockProjectRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByCode(ctx, code)
	return err == nil, nil
}

// mockProjectElementRepository implements secondary.ProjectElementRepository for testing.
type mockProjectElementRepository struct {
	instances map[string]*secondary.ProjectElementRecord
	values    map[string]*secondary.ValueRecord // peID|varID -> value
	stale     map[string]bool
}

func newMockProjectElementRepository() *mockProjectElementRepository {
	return &mockProjectElementRepository{
		instances: make(map[string]*secondary.ProjectElementRecord),
		values:    make(map[string]*secondary.ValueRecord),
		stale:     make(map[string]bool),
	}
}

func (m *mockProjectElementRepository) Create(ctx context.Context, pe *secondary.ProjectElementRecord) error {
	if pe.ID == "" {
		pe.ID = fmt.Sprintf("PE-%03d", len(m.instances)+1)
	}
	m.instances[pe.ID] = pe
	m.stale[pe.ID] = true
	return nil
}

func (m *mockProjectElementRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectElementRecord, error) {
	if pe, ok := m.instances[id]; ok {
		return pe, nil
	}
	return nil, errkind.NotFound("project element", id)
}

func (m *mockProjectElementRepository) ListByProject(ctx context.Context, projectID string) ([]*secondary.ProjectElementRecord, error) {
	var result []*secondary.ProjectElementRecord
	for _, pe := range m.instances {
		if pe.ProjectID == projectID {
			result = append(result, pe)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].InstanceCode < result[j].InstanceCode })
	return result, nil
}

func (m *mockProjectElementRepository) InstanceCodeExists(ctx context.Context, projectID, instanceCode string) (bool, error) {
	for _, pe := range m.instances {
		if pe.ProjectID == projectID && pe.InstanceCode == instanceCode {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProjectElementRepository) GetValue(ctx context.Context, projectElementID, variableID string) (*secondary.ValueRecord, error) {
	return m.values[projectElementID+"|"+variableID], nil
}

func (m *mockProjectElementRepository) ListValues(ctx context.Context, projectElementID string) ([]*secondary.ValueRecord, error) {
	var result []*secondary.ValueRecord
	for _, v := range m.values {
		if v.ProjectElementID == projectElementID {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VariableID < result[j].VariableID })
	return result, nil
}

func (m *mockProjectElementRepository) UpsertValue(ctx context.Context, value *secondary.ValueRecord, expectedRevision int) error {
	key := value.ProjectElementID + "|" + value.VariableID
	current := m.values[key]
	revision := 0
	if current != nil {
		revision = current.Revision
	}
	if expectedRevision > 0 && expectedRevision != revision {
		return fmt.Errorf("%w: revision %d", errkind.ErrConflict, revision)
	}
	value.Revision = revision + 1
	stored := *value
	m.values[key] = &stored
	m.stale[value.ProjectElementID] = true
	return nil
}

// mockRenderedRepository implements secondary.RenderedRepository for testing.
type mockRenderedRepository struct {
	mu        sync.Mutex
	inputs    map[string]*secondary.RenderInputsRecord
	rows      map[string]*secondary.RenderedRecord
	onLoad    func(projectElementID string) // runs after inputs are read
	saveCalls int
}

func newMockRenderedRepository() *mockRenderedRepository {
	return &mockRenderedRepository{
		inputs: make(map[string]*secondary.RenderInputsRecord),
		rows:   make(map[string]*secondary.RenderedRecord),
	}
}

// addInstance registers render inputs and a stale cache row.
func (m *mockRenderedRepository) addInstance(in *secondary.RenderInputsRecord) {
	m.inputs[in.ProjectElementID] = in
	m.rows[in.ProjectElementID] = &secondary.RenderedRecord{
		ProjectElementID: in.ProjectElementID,
		IsStale:          true,
		InputRevision:    in.InputRevision,
	}
}

// bump simulates a concurrent value write.
func (m *mockRenderedRepository) bump(projectElementID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[projectElementID]
	row.IsStale = true
	row.InputRevision++
	m.inputs[projectElementID].InputRevision = row.InputRevision
}

func (m *mockRenderedRepository) LoadInputs(ctx context.Context, projectElementID string) (*secondary.RenderInputsRecord, error) {
	m.mu.Lock()
	in, ok := m.inputs[projectElementID]
	if !ok {
		m.mu.Unlock()
		return nil, errkind.NotFound("project element", projectElementID)
	}
	snapshot := *in
	m.mu.Unlock()
	if m.onLoad != nil {
		m.onLoad(projectElementID)
	}
	return &snapshot, nil
}

func (m *mockRenderedRepository) Get(ctx context.Context, projectElementID string) (*secondary.RenderedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[projectElementID]; ok {
		return row, nil
	}
	return nil, errkind.NotFound("rendered description", projectElementID)
}

func (m *mockRenderedRepository) Save(ctx context.Context, projectElementID, text string, inputRevision int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	row, ok := m.rows[projectElementID]
	if !ok || row.InputRevision != inputRevision {
		return false, nil
	}
	row.RenderedText = text
	row.IsStale = false
	row.RenderedAt = "2024-01-01T00:00:00Z"
	return true, nil
}

func (m *mockRenderedRepository) ListStale(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, row := range m.rows {
		if row.IsStale {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ============================================================================
// Test Helper
// ============================================================================

type testRepos struct {
	elements  *mockElementRepository
	variables *mockVariableRepository
	versions  *mockVersionRepository
	projects  *mockProjectRepository
	instances *mockProjectElementRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		elements:  newMockElementRepository(),
		variables: newMockVariableRepository(),
		versions:  newMockVersionRepository(),
		projects:  newMockProjectRepository(),
		instances: newMockProjectElementRepository(),
	}
}

// seedElement stores an element record directly.
func (r *testRepos) seedElement(id, code string) {
	r.elements.elements[id] = &secondary.ElementRecord{ID: id, Code: code, Name: "Elemento " + code, CreatedBy: "seed"}
}

// seedVariable stores a variable record directly.
func (r *testRepos) seedVariable(id, elementID, name, varType string, required bool) {
	r.variables.variables[id] = &secondary.VariableRecord{ID: id, ElementID: elementID, Name: name, Type: varType, Required: required}
}

// seedVersion stores a version record directly.
func (r *testRepos) seedVersion(id, elementID, text, state string, active bool) {
	r.versions.versions[id] = &secondary.VersionRecord{ID: id, ElementID: elementID, VersionNumber: len(r.versions.versions) + 1, TemplateText: text, State: state, IsActive: active}
}

var testLogger = logging.Nop()
