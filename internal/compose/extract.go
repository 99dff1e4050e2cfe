package compose

// FieldName returns the name of the trailing field declaration of fragment,
// the one a resolver placed right after the fragment binds to.
//
// The declaration must be on the last line that carries any token (blank and
// comment-only lines are skipped) and has the form `name: Type` or
// `name(args): Type`. ErrNoMatch is returned when there is none, ErrAmbiguous
// when the declaration sits outside the type body it would belong to.
func FieldName(fragment string) (string, error) {
	return scanFragment(fragment).field()
}

// TypeName returns the name of the last `type Name {` or
// `extend type Name {` opening in fragment, or ErrNoMatch.
func TypeName(fragment string) (string, error) {
	return scanFragment(fragment).typ()
}

// fragmentScan holds everything the binder needs from one fragment.
type fragmentScan struct {
	typeName  string
	hasType   bool
	fieldName string
	fieldErr  error
}

func (s fragmentScan) field() (string, error) {
	if s.fieldErr != nil {
		return "", s.fieldErr
	}
	return s.fieldName, nil
}

func (s fragmentScan) typ() (string, error) {
	if !s.hasType {
		return "", &ExtractError{Subject: "type", Err: ErrNoMatch, Detail: "fragment opens no type"}
	}
	return s.typeName, nil
}

func scanFragment(fragment string) fragmentScan {
	toks := lex(fragment)
	var s fragmentScan

	opening, hasOpening := lastTypeOpening(toks)
	s.typeName, s.hasType = opening.name, hasOpening

	decl, ok := lastFieldDeclaration(toks)
	if !ok {
		s.fieldErr = &ExtractError{Subject: "field", Err: ErrNoMatch, Detail: "no trailing field declaration"}
		return s
	}
	name := toks[decl].text

	enclosing, open, underflow := enclosingBrace(toks, decl)
	switch {
	case closesAfter(toks, decl):
		s.fieldErr = &ExtractError{Subject: "field", Err: ErrAmbiguous, Detail: name + " is followed by the end of its type body"}
		return s
	case open && hasOpening && enclosing == opening.brace:
	case open:
		s.fieldErr = &ExtractError{Subject: "field", Err: ErrAmbiguous, Detail: name + " is declared inside a body that is not a type"}
		return s
	case hasOpening:
		s.fieldErr = &ExtractError{Subject: "field", Err: ErrAmbiguous, Detail: name + " follows the closed body of type " + opening.name}
		return s
	case underflow:
		s.fieldErr = &ExtractError{Subject: "field", Err: ErrAmbiguous, Detail: name + " follows a closed type body"}
		return s
	}
	s.fieldName = name
	return s
}
