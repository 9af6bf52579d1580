package dsl

import (
	"fmt"

	"github.com/partforge/partforge/internal/ir"
)

// Compile parses DSL text into a Part. The first syntax error aborts with
// a *CompileError; a returned Part is always structurally complete.
//
// Bare identifiers in feature arguments are resolved after parsing: one
// naming a declared param becomes a param reference, anything else an
// opaque string literal.
func Compile(src string) (*ir.Part, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	part, err := p.parsePart()
	if err != nil {
		return nil, err
	}
	resolveBareIdents(part)
	return part, nil
}

type parser struct {
	lex *lexer
	tok token

	constraintSeq int
	dimensionSeq  int
}

func (p *parser) advance() *CompileError {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) fail(expected string) *CompileError {
	return &CompileError{
		Line:     p.tok.line,
		Col:      p.tok.col,
		Expected: expected,
		Found:    p.tok.describe(),
	}
}

// expect consumes a token of the given type and returns it.
func (p *parser) expect(typ tokenType, expected string) (token, *CompileError) {
	if p.tok.typ != typ {
		return token{}, p.fail(expected)
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

// expectKeyword consumes a specific identifier.
func (p *parser) expectKeyword(kw string) *CompileError {
	if p.tok.typ != tokIdent || p.tok.text != kw {
		return p.fail(fmt.Sprintf("%q", kw))
	}
	return p.advance()
}

func (p *parser) parsePart() (*ir.Part, *CompileError) {
	if err := p.expectKeyword("part"); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "part name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return nil, err
	}

	part := &ir.Part{Name: name.text, Params: map[string]ir.Param{}}
	for p.tok.typ != tokRBrace {
		if p.tok.typ != tokIdent {
			return nil, p.fail(`"param", "feature", "chain", or "}"`)
		}
		switch p.tok.text {
		case "param":
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			part.Params[param.Name] = param
		case "feature":
			feature, err := p.parseFeature()
			if err != nil {
				return nil, err
			}
			part.Features = append(part.Features, feature)
		case "chain":
			chain, err := p.parseChain()
			if err != nil {
				return nil, err
			}
			part.Chains = append(part.Chains, chain)
		default:
			return nil, p.fail(`"param", "feature", "chain", or "}"`)
		}
	}
	if err := p.advance(); err != nil { // closing brace
		return nil, err
	}
	if p.tok.typ != tokEOF {
		return nil, p.fail("end of input")
	}
	return part, nil
}

// param <name> = <number> <unit> [tolerance <class>]
func (p *parser) parseParam() (ir.Param, *CompileError) {
	if err := p.advance(); err != nil { // "param"
		return ir.Param{}, err
	}
	name, err := p.expect(tokIdent, "param name")
	if err != nil {
		return ir.Param{}, err
	}
	if _, err := p.expect(tokEquals, `"="`); err != nil {
		return ir.Param{}, err
	}
	value, err := p.expect(tokNumber, "numeric value")
	if err != nil {
		return ir.Param{}, err
	}
	unit, err := p.expect(tokIdent, "unit")
	if err != nil {
		return ir.Param{}, err
	}

	param := ir.Param{Name: name.text, Value: value.num, Unit: unit.text}
	if p.tok.typ == tokIdent && p.tok.text == "tolerance" {
		if err := p.advance(); err != nil {
			return ir.Param{}, err
		}
		class, err := p.expect(tokIdent, "tolerance class")
		if err != nil {
			return ir.Param{}, err
		}
		param.ToleranceClass = class.text
	}
	return param, nil
}

// feature <name> = <type>(<key> = <value>, ...) [sketch body]
func (p *parser) parseFeature() (ir.Feature, *CompileError) {
	if err := p.advance(); err != nil { // "feature"
		return ir.Feature{}, err
	}
	name, err := p.expect(tokIdent, "feature name")
	if err != nil {
		return ir.Feature{}, err
	}
	if _, err := p.expect(tokEquals, `"="`); err != nil {
		return ir.Feature{}, err
	}
	ftype, err := p.expect(tokIdent, "feature type")
	if err != nil {
		return ir.Feature{}, err
	}
	if !ir.ValidFeatureTypes[ir.FeatureType(ftype.text)] {
		return ir.Feature{}, &CompileError{
			Line:     ftype.line,
			Col:      ftype.col,
			Expected: `feature type "sketch" or "extrude"`,
			Found:    fmt.Sprintf("%q", ftype.text),
		}
	}

	feature := ir.Feature{
		Type:   ir.FeatureType(ftype.text),
		Name:   name.text,
		Params: map[string]ir.FeatureValue{},
	}

	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return ir.Feature{}, err
	}
	plane := ""
	for p.tok.typ != tokRParen {
		key, value, perr := p.parseFeatureArg()
		if perr != nil {
			return ir.Feature{}, perr
		}
		if key == "on_plane" && feature.Type == ir.FeatureSketch {
			plane = value.Str
		} else {
			feature.Params[key] = value
		}
		if p.tok.typ == tokComma {
			if err := p.advance(); err != nil {
				return ir.Feature{}, err
			}
			continue
		}
		if p.tok.typ != tokRParen {
			return ir.Feature{}, p.fail(`"," or ")"`)
		}
	}
	if err := p.advance(); err != nil { // closing paren
		return ir.Feature{}, err
	}

	if feature.Type == ir.FeatureSketch && p.tok.typ == tokLBrace {
		sk, perr := p.parseSketchBody(name.text, plane)
		if perr != nil {
			return ir.Feature{}, perr
		}
		feature.Sketch = sk
	} else if feature.Type == ir.FeatureSketch {
		feature.Sketch = &ir.Sketch{Name: name.text, Plane: plane}
	}
	return feature, nil
}

// parseFeatureArg parses one `key = value` pair. Values are numbers,
// numbers with a trailing unit, quoted strings, or bare identifiers. Bare
// identifiers come back as references; the post-parse pass demotes the
// ones that never bind to a param.
func (p *parser) parseFeatureArg() (string, ir.FeatureValue, *CompileError) {
	key, err := p.expect(tokIdent, "argument name")
	if err != nil {
		return "", ir.FeatureValue{}, err
	}
	if _, err := p.expect(tokEquals, `"="`); err != nil {
		return "", ir.FeatureValue{}, err
	}

	switch p.tok.typ {
	case tokString:
		v := ir.StringValue(p.tok.text)
		return key.text, v, p.advance()
	case tokNumber:
		num := p.tok
		if err := p.advance(); err != nil {
			return "", ir.FeatureValue{}, err
		}
		if p.tok.typ == tokIdent {
			// `5 mm` literal form; ResolveValue parses it back.
			unit := p.tok.text
			if err := p.advance(); err != nil {
				return "", ir.FeatureValue{}, err
			}
			return key.text, ir.StringValue(fmt.Sprintf("%s %s", num.text, unit)), nil
		}
		return key.text, ir.NumberValue(num.num), nil
	case tokIdent:
		v := ir.RefValue(p.tok.text)
		return key.text, v, p.advance()
	default:
		return "", ir.FeatureValue{}, p.fail("argument value")
	}
}

// Sketch body grammar:
//
//	[construction] line <id> from (x, y) to (x, y)
//	[construction] circle <id> center (x, y) radius <number> <unit>
//	[construction] rectangle <id> from (x, y) to (x, y)
//	horizontal(<id>) | vertical(<id>) | coincident(<id>, <id>)
//	dim_length(<id>, <number> <unit>) | dim_diameter(<id>, <number> <unit>)
func (p *parser) parseSketchBody(name, plane string) (*ir.Sketch, *CompileError) {
	if err := p.advance(); err != nil { // opening brace
		return nil, err
	}
	sk := &ir.Sketch{Name: name, Plane: plane}

	for p.tok.typ != tokRBrace {
		if p.tok.typ != tokIdent {
			return nil, p.fail(`a sketch entity, constraint, dimension, or "}"`)
		}

		construction := false
		if p.tok.text == "construction" {
			construction = true
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.typ != tokIdent {
				return nil, p.fail(`"line", "circle", or "rectangle"`)
			}
		}

		switch p.tok.text {
		case "line", "rectangle":
			e, err := p.parseTwoPointEntity(construction)
			if err != nil {
				return nil, err
			}
			sk.Entities = append(sk.Entities, e)
		case "circle":
			e, err := p.parseCircle(construction)
			if err != nil {
				return nil, err
			}
			sk.Entities = append(sk.Entities, e)
		case "horizontal", "vertical", "coincident":
			if construction {
				return nil, p.fail(`"line", "circle", or "rectangle"`)
			}
			c, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			sk.Constraints = append(sk.Constraints, c)
		case "dim_length", "dim_diameter":
			if construction {
				return nil, p.fail(`"line", "circle", or "rectangle"`)
			}
			d, err := p.parseDimension()
			if err != nil {
				return nil, err
			}
			sk.Dimensions = append(sk.Dimensions, d)
		default:
			return nil, p.fail(`a sketch entity, constraint, dimension, or "}"`)
		}
	}
	return sk, p.advance()
}

func (p *parser) parseTwoPointEntity(construction bool) (ir.SketchEntity, *CompileError) {
	kind := ir.EntityType(p.tok.text)
	if err := p.advance(); err != nil {
		return ir.SketchEntity{}, err
	}
	id, err := p.expect(tokIdent, "entity id")
	if err != nil {
		return ir.SketchEntity{}, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return ir.SketchEntity{}, err
	}
	a, err := p.parsePoint()
	if err != nil {
		return ir.SketchEntity{}, err
	}
	if err := p.expectKeyword("to"); err != nil {
		return ir.SketchEntity{}, err
	}
	b, err := p.parsePoint()
	if err != nil {
		return ir.SketchEntity{}, err
	}

	e := ir.SketchEntity{ID: id.text, Type: kind, Construction: construction}
	if kind == ir.EntityLine {
		e.Start, e.End = a, b
	} else {
		e.Corner1, e.Corner2 = a, b
	}
	return e, nil
}

func (p *parser) parseCircle(construction bool) (ir.SketchEntity, *CompileError) {
	if err := p.advance(); err != nil { // "circle"
		return ir.SketchEntity{}, err
	}
	id, err := p.expect(tokIdent, "entity id")
	if err != nil {
		return ir.SketchEntity{}, err
	}
	if err := p.expectKeyword("center"); err != nil {
		return ir.SketchEntity{}, err
	}
	center, err := p.parsePoint()
	if err != nil {
		return ir.SketchEntity{}, err
	}
	if err := p.expectKeyword("radius"); err != nil {
		return ir.SketchEntity{}, err
	}
	radius, err := p.expect(tokNumber, "radius value")
	if err != nil {
		return ir.SketchEntity{}, err
	}
	if _, err := p.expect(tokIdent, "unit"); err != nil {
		return ir.SketchEntity{}, err
	}

	r := radius.num
	return ir.SketchEntity{
		ID:           id.text,
		Type:         ir.EntityCircle,
		Center:       center,
		Radius:       &r,
		Construction: construction,
	}, nil
}

func (p *parser) parseConstraint() (ir.SketchConstraint, *CompileError) {
	kind := ir.ConstraintType(p.tok.text)
	if err := p.advance(); err != nil {
		return ir.SketchConstraint{}, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return ir.SketchConstraint{}, err
	}

	var ids []string
	for {
		id, err := p.expect(tokIdent, "entity id")
		if err != nil {
			return ir.SketchConstraint{}, err
		}
		ids = append(ids, id.text)
		if p.tok.typ == tokComma {
			if err := p.advance(); err != nil {
				return ir.SketchConstraint{}, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return ir.SketchConstraint{}, err
	}

	p.constraintSeq++
	return ir.SketchConstraint{
		ID:        fmt.Sprintf("c%d", p.constraintSeq),
		Type:      kind,
		EntityIDs: ids,
	}, nil
}

func (p *parser) parseDimension() (ir.SketchDimension, *CompileError) {
	kind := ir.DimensionLength
	if p.tok.text == "dim_diameter" {
		kind = ir.DimensionDiameter
	}
	if err := p.advance(); err != nil {
		return ir.SketchDimension{}, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return ir.SketchDimension{}, err
	}
	id, err := p.expect(tokIdent, "entity id")
	if err != nil {
		return ir.SketchDimension{}, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return ir.SketchDimension{}, err
	}
	value, err := p.expect(tokNumber, "dimension value")
	if err != nil {
		return ir.SketchDimension{}, err
	}
	unit, err := p.expect(tokIdent, "unit")
	if err != nil {
		return ir.SketchDimension{}, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return ir.SketchDimension{}, err
	}

	p.dimensionSeq++
	return ir.SketchDimension{
		ID:        fmt.Sprintf("d%d", p.dimensionSeq),
		Type:      kind,
		EntityIDs: []string{id.text},
		Value:     value.num,
		Unit:      unit.text,
	}, nil
}

// parsePoint parses "(x, y)".
func (p *parser) parsePoint() (*ir.Vec2, *CompileError) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	x, err := p.expect(tokNumber, "x coordinate")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma, `","`); err != nil {
		return nil, err
	}
	y, err := p.expect(tokNumber, "y coordinate")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	return &ir.Vec2{x.num, y.num}, nil
}

// chain <name> { terms = [a, b] [target_value = N] [target_tolerance = N] }
func (p *parser) parseChain() (ir.Chain, *CompileError) {
	if err := p.advance(); err != nil { // "chain"
		return ir.Chain{}, err
	}
	name, err := p.expect(tokIdent, "chain name")
	if err != nil {
		return ir.Chain{}, err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return ir.Chain{}, err
	}

	chain := ir.Chain{Name: name.text}
	for p.tok.typ != tokRBrace {
		if p.tok.typ != tokIdent {
			return ir.Chain{}, p.fail(`"terms", "target_value", "target_tolerance", or "}"`)
		}
		switch p.tok.text {
		case "terms":
			if err := p.advance(); err != nil {
				return ir.Chain{}, err
			}
			if _, err := p.expect(tokEquals, `"="`); err != nil {
				return ir.Chain{}, err
			}
			terms, perr := p.parseTermList()
			if perr != nil {
				return ir.Chain{}, perr
			}
			chain.Terms = terms
		case "target_value", "target_tolerance":
			field := p.tok.text
			if err := p.advance(); err != nil {
				return ir.Chain{}, err
			}
			if _, err := p.expect(tokEquals, `"="`); err != nil {
				return ir.Chain{}, err
			}
			value, perr := p.expect(tokNumber, "numeric value")
			if perr != nil {
				return ir.Chain{}, perr
			}
			v := value.num
			if field == "target_value" {
				chain.TargetValue = &v
			} else {
				chain.TargetTolerance = &v
			}
		default:
			return ir.Chain{}, p.fail(`"terms", "target_value", "target_tolerance", or "}"`)
		}
	}
	return chain, p.advance()
}

func (p *parser) parseTermList() ([]string, *CompileError) {
	if _, err := p.expect(tokLBracket, `"["`); err != nil {
		return nil, err
	}
	var terms []string
	for p.tok.typ != tokRBracket {
		term, err := p.expect(tokIdent, "param name")
		if err != nil {
			return nil, err
		}
		terms = append(terms, term.text)
		if p.tok.typ == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.tok.typ != tokRBracket {
			return nil, p.fail(`"," or "]"`)
		}
	}
	if err := p.advance(); err != nil { // closing bracket
		return nil, err
	}
	return terms, nil
}

// resolveBareIdents demotes unbound references to string literals. A bare
// identifier is a param reference only when a param of that name exists.
func resolveBareIdents(part *ir.Part) {
	for _, f := range part.Features {
		for key, v := range f.Params {
			if v.Kind != ir.ValueRef {
				continue
			}
			if _, ok := part.Params[v.Str]; !ok {
				f.Params[key] = ir.StringValue(v.Str)
			}
		}
	}
}
