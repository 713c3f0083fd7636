package core

// MethodSig is an abstract method signature with no body.
type MethodSig struct {
	Name      string
	Signature Signature
	Doc       []string
}

// Contract is the synthesized interface over a composed declaration's methods.
type Contract struct {
	// Name is the interface type name.
	Name string
	// For is the composed declaration the contract was derived from.
	For        string
	Signatures []MethodSig
}

// Binding attaches composed behavior implementations to a contract.
type Binding struct {
	// Contract is the name of the bound contract.
	Contract string
	// Type is the composed declaration the methods are bound to.
	Type string
	// Methods are the composed methods with receivers rebound to Type.
	Methods []Behavior
	// Assoc are associated constants and types carried verbatim.
	Assoc []Behavior
}
