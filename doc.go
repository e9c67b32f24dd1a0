// Package authkit provides a hierarchical role and permission authorization
// engine backed by a relational database.
//
// AuthKit stores authorization items (roles and permissions) in a shared
// namespace, organizes them into a directed acyclic hierarchy, optionally
// attaches conditional rules to items, tracks assignments of items to users,
// and answers the central question: may user U perform permission P with
// these parameters?
//
// # Core Concepts
//
// Item: A named authorization unit, either a Role or a Permission. Names are
// globally unique across both types because the hierarchy and assignment
// tables key purely by name.
//
// Role: An item that can have children (other roles or permissions) and be
// assigned to users.
//
// Permission: A leaf-oriented item representing a grantable capability. A
// permission can never be the parent of a role.
//
// Rule: An opaque predicate evaluated at check time. A failing rule vetoes
// its item regardless of hierarchy or direct assignment. A rule that cannot
// be loaded evaluates to false (fail-closed). The shipped ExprEvaluator
// executes expr-lang expressions against the user, item, and caller params;
// integrators can plug in any RuleEvaluator implementation.
//
// Hierarchy edge: A directed parent-child relation. Access granted at a
// child is inherited by anyone holding any ancestor (OR-reachability upward
// from the checked item).
//
// # Key Features
//
//   - Recursive access checks with rule veto and short-circuit OR semantics
//   - Acyclicity and type constraints enforced on every edge insert
//   - Cascading renames and removals across items, edges, and assignments
//   - Idempotent user assignments keyed by (user, item)
//   - Role-hierarchy tree projection for UI display
//   - Explicit, auditable bypass identity ("god id") and default roles
//   - Detailed audit logging of every mutation
//   - DBKit integration: uses your existing database connection
//
// # Basic Usage
//
//	// 1. Create the service
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := authkit.New(db, authkit.NewExprEvaluator(), authkit.Config{
//	    DefaultRoles: []string{"guest"},
//	})
//
//	// 2. Run migrations
//	db.Migrate(ctx, service.Migrations())
//
//	// 3. Define items and hierarchy
//	admin := authkit.NewRole("admin")
//	admin.Description = "Administrator"
//	service.AddItem(ctx, admin)
//
//	createPosts := authkit.NewPermission("posts.create")
//	service.AddItem(ctx, createPosts)
//	service.AddChild(ctx, "admin", "posts.create")
//
//	// 4. Assign and check
//	service.Assign(ctx, "admin", adminID)
//
//	ok, err := service.CheckAccess(ctx, adminID, "posts.create", nil)
//
// # Conditional Rules
//
// A rule constrains an item to a runtime condition. With the ExprEvaluator,
// rule data is an expr-lang boolean expression over "userID", "item" and
// "params":
//
//	rule := &authkit.Rule{Name: "is_author", Data: []byte(`params.authorID == userID`)}
//	service.AddRule(ctx, rule)
//
//	updatePosts := authkit.NewPermission("posts.update")
//	updatePosts.RuleName = "is_author"
//	service.AddItem(ctx, updatePosts)
//
//	service.CheckAccess(ctx, userID, "posts.update", map[string]any{"authorID": userID})
//
// # Middleware Usage
//
//	mw := authkit.NewMiddleware(service)
//
//	router.Handle("/posts", mw.RequirePermission("posts.create")(createHandler))
//
// # Audit Log
//
// Every mutation (item, rule, edge, assignment) is logged with the actor,
// target, action, and request metadata taken from the context.
package authkit
