package plan

// Op is the kind of a planned operation.
type Op int

const (
	// OpCreate brings a resource into existence.
	OpCreate Op = iota
	// OpDelete removes an existing resource.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is a single planned step: create or delete one named resource.
// The closed two-variant shape lets executors switch on Kind exhaustively
// instead of parsing string tokens.
type Operation struct {
	Kind Op
	Name string
}

// Create returns a create operation for name.
func Create(name string) Operation {
	return Operation{Kind: OpCreate, Name: name}
}

// Delete returns a delete operation for name.
func Delete(name string) Operation {
	return Operation{Kind: OpDelete, Name: name}
}

// Token renders the operation in the conventional "+name" / "-name" form used
// for logging and by downstream consumers.
func (op Operation) Token() string {
	if op.Kind == OpDelete {
		return "-" + op.Name
	}
	return "+" + op.Name
}

// Plan is an ordered, deduplicated sequence of operations. Applied strictly in
// order it transforms the current resource set into the target set.
type Plan []Operation

// Tokens renders the plan as "+name" / "-name" tokens.
func (p Plan) Tokens() []string {
	tokens := make([]string, len(p))
	for i, op := range p {
		tokens[i] = op.Token()
	}
	return tokens
}
