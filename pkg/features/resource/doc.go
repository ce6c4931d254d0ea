// Package resource holds the authoritative state of one asynchronous
// collection query.
//
// A Resource moves through four states:
//
//   - Initial: never fetched
//   - Waiting: a fetch is in flight and there is no previous result
//   - Success: the last fetch succeeded; Waiting is set while revalidating
//   - Failure: the last fetch failed; Waiting is set while retrying
//
// Revalidation keeps the previous result visible. A Resource holding
// Success([x, y]) moves to Success([x, y], waiting) when refetched, not back
// to Waiting.
//
// At most one fetch is live at a time. Fetch joins an outstanding fetch;
// Refetch and Invalidate supersede it: the previous fetch's context is
// cancelled and its completion, should it still arrive, is discarded. Which
// result wins is decided by issue order, never by completion order.
//
// Basic usage:
//
//	users := resource.New(func(ctx context.Context) ([]users.User, error) {
//	    return svc.List(ctx)
//	}).StaleTime(30 * time.Second)
//
//	users.Fetch()
//	snap, err := users.Wait(ctx)
//
//	line, _ := resource.Match(snap,
//	    resource.OnWaiting[[]users.User](func() string { return "loading..." }),
//	    resource.OnFailure[[]users.User](func(err error, _ bool) string { return err.Error() }),
//	    resource.OnSuccess(func(list []users.User, _ bool) string { return render(list) }),
//	)
package resource
