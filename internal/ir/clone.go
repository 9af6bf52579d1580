package ir

// Clone deep-copies a Part. Edits operate on the clone so that a snapshot
// handed to a rebuild is never mutated mid-flight; this is what makes
// rebuild cancellation safe without locks.
func (p *Part) Clone() *Part {
	out := &Part{
		Name:   p.Name,
		Params: make(map[string]Param, len(p.Params)),
	}
	for name, param := range p.Params {
		out.Params[name] = param
	}
	if p.Features != nil {
		out.Features = make([]Feature, len(p.Features))
		for i := range p.Features {
			out.Features[i] = p.Features[i].clone()
		}
	}
	if p.Chains != nil {
		out.Chains = make([]Chain, len(p.Chains))
		for i := range p.Chains {
			out.Chains[i] = p.Chains[i].clone()
		}
	}
	return out
}

func (f Feature) clone() Feature {
	out := f
	if f.Params != nil {
		out.Params = make(map[string]FeatureValue, len(f.Params))
		for k, v := range f.Params {
			out.Params[k] = v
		}
	}
	if f.Sketch != nil {
		out.Sketch = f.Sketch.Clone()
	}
	return out
}

func (c Chain) clone() Chain {
	out := c
	out.Terms = append([]string(nil), c.Terms...)
	if c.TargetValue != nil {
		v := *c.TargetValue
		out.TargetValue = &v
	}
	if c.TargetTolerance != nil {
		v := *c.TargetTolerance
		out.TargetTolerance = &v
	}
	return out
}

// Clone deep-copies a Sketch, including entity coordinate storage. The
// sketch solver works on a clone and only publishes it on success.
func (s *Sketch) Clone() *Sketch {
	out := &Sketch{Name: s.Name, Plane: s.Plane}
	if s.Entities != nil {
		out.Entities = make([]SketchEntity, len(s.Entities))
		for i := range s.Entities {
			out.Entities[i] = s.Entities[i].clone()
		}
	}
	if s.Constraints != nil {
		out.Constraints = make([]SketchConstraint, len(s.Constraints))
		for i := range s.Constraints {
			c := s.Constraints[i]
			c.EntityIDs = append([]string(nil), c.EntityIDs...)
			out.Constraints[i] = c
		}
	}
	if s.Dimensions != nil {
		out.Dimensions = make([]SketchDimension, len(s.Dimensions))
		for i := range s.Dimensions {
			d := s.Dimensions[i]
			d.EntityIDs = append([]string(nil), d.EntityIDs...)
			out.Dimensions[i] = d
		}
	}
	return out
}

func (e SketchEntity) clone() SketchEntity {
	out := e
	out.Start = cloneVec(e.Start)
	out.End = cloneVec(e.End)
	out.Center = cloneVec(e.Center)
	out.Corner1 = cloneVec(e.Corner1)
	out.Corner2 = cloneVec(e.Corner2)
	if e.Radius != nil {
		r := *e.Radius
		out.Radius = &r
	}
	return out
}

func cloneVec(v *Vec2) *Vec2 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
