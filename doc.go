// Package milcubes provides a client library for the MilCubes platform's
// administrative HTTP API: session establishment, project record management,
// and direct-to-object-storage file uploads.
//
// # Sessions
//
// All API operations go through a Session holding an immutable bearer token.
// A session can be established three ways, each converging on the same token
// exchange against the admin auth endpoint:
//
//	session, err := milcubes.FromCredentials(ctx, "admin@example.com", "secret")
//	session, err := milcubes.FromCookies(ctx, map[string]string{"laravel_session": "..."})
//	session, err := milcubes.FromCookiesJSON(ctx, rawBrowserExport)
//
// # Projects
//
// Projects are fetched as a collection bound to the issuing session. Lookups
// refresh the matched project from the platform so callers always see live
// data:
//
//	projects, err := session.GetProjects(ctx, 0, 1000)
//	project, err := projects.FindByTitle(ctx, "Chapter 1")
//	path, err := project.DownloadContent(".")
//
// # File uploads
//
// File uploads are two-phase: the platform issues a signed upload policy, the
// bytes go directly to object storage, and the resulting object is registered
// back with the platform:
//
//	uploaded, err := session.UploadFilePath(ctx, "./cover.png", "")
//	fmt.Println(uploaded.URL, uploaded.ID)
//
// See the cmd/milcubes-cli package for the command line front end.
package milcubes
