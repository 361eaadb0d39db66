// Package content provides access control and shared-asset lifecycle
// management for a content backend (banners, kajian announcements,
// accounts).
//
// Authentication:
//   - Credentials are bcrypt hashed; TokenService issues HS256 JWTs with
//     a configurable TTL. Auther.Authenticate validates a token and then
//     resolves its subject against the user store, so a signed token for
//     a deleted account never passes.
//   - middleware/jwtware guards fiber routes. Tokens are extracted in a
//     fixed order (Authorization header, then the jwt cookie) and an
//     optional role set narrows access after validation.
//
// Media lifecycle:
//   - MediaStore validates and stores image uploads, registers external
//     URLs, and probes image dimensions best effort.
//   - Attacher connects banners and kajian to media rows and reference
//     counts assets when owners change or disappear. Counts are taken
//     after the owning write, inside the same transaction; an asset with
//     zero owners loses its file first and its row second.
package content
