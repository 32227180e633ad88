package har

// Predicate decides whether the action runs for one object member.
// obj is the object holding the member, key its name and val its value.
type Predicate func(obj *Value, key string, val *Value) bool

// Action is invoked for each member accepted by a Predicate. It may mutate
// obj, for example by replacing a sibling member's value.
type Action func(obj *Value, key string, val *Value)

// Walk visits v depth-first.
//
// Arrays are descended item by item. For every object member, in order,
// pred is evaluated and act is invoked when it returns true. Whatever pred
// returned, the member's value is then descended when it is an object or an
// array. The value descended is the one the member held when it was
// visited, so an action replacing the current member does not redirect the
// walk. Scalars and null are leaves.
func Walk(v *Value, pred Predicate, act Action) {
	switch v.Kind() {
	case KindArray:
		for _, item := range v.items {
			Walk(item, pred, act)
		}
	case KindObject:
		n := len(v.members)
		for i := 0; i < n && i < len(v.members); i++ {
			m := v.members[i]
			if pred(v, m.Key, m.Value) {
				act(v, m.Key, m.Value)
			}
			if m.Value.IsContainer() {
				Walk(m.Value, pred, act)
			}
		}
	}
}

// KeyEquals returns a Predicate matching members named key.
func KeyEquals(key string) Predicate {
	return func(_ *Value, k string, _ *Value) bool {
		return k == key
	}
}
