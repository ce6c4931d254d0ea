// Package optimistic layers speculative entries on top of a collection
// resource so that a creation shows up before the server has confirmed it.
//
// A Projection wraps a resource.Resource holding a slice. Submit appends a
// speculative entry synchronously, before any network call, and runs the
// commit function in the background:
//
//   - If the commit fails, the entry is removed at once and the error is
//     reported on that Mutation only. The base resource is untouched.
//   - If the commit succeeds, the base resource is invalidated. The entry
//     stays visible until the refetch it issued has settled, whether that
//     refetch succeeds or fails.
//
// Speculative entries carry negative temporary ids (-1, -2, ...) so they
// never collide with server-assigned ids.
//
// The projected view equals the base snapshot unless the base is Success,
// in which case the value is the base value followed by the live entries in
// submission order.
//
// Example:
//
//	list := resource.New(svc.List)
//	proj := optimistic.New(list,
//	    func(in users.UserForm, id int64) users.User { return in.Preview(int(id)) },
//	    svc.Create,
//	)
//
//	m := proj.Submit(ctx, form)
//	// proj.Snapshot().Value already ends with the speculative user.
//	created, err := m.Wait(ctx)
package optimistic
