package game

import "elevjudge/src/types"

// roster is an arena of persons. Handles are slot indices and are never reused.
type roster struct {
	slots []*types.Person
	live  int
}

func (r *roster) add(p *types.Person) types.PersonID {
	p.ID = types.PersonID(len(r.slots))
	r.slots = append(r.slots, p)
	r.live++
	return p.ID
}

func (r *roster) get(id types.PersonID) *types.Person {
	if id < 0 || int(id) >= len(r.slots) {
		return nil
	}
	return r.slots[id]
}

func (r *roster) remove(id types.PersonID) {
	if r.get(id) == nil {
		return
	}
	r.slots[id] = nil
	r.live--
}

func (r *roster) len() int {
	return r.live
}

// each visits live persons in creation order. fn may remove the person it is given.
func (r *roster) each(fn func(p *types.Person) bool) {
	for _, p := range r.slots {
		if p == nil {
			continue
		}
		if !fn(p) {
			return
		}
	}
}
