// Package ratelimit paces the harvest pipeline.
//
// Search engines tolerate slow, irregular request streams and interpose
// CAPTCHA interstitials on fast regular ones. The Pacer interface covers the
// three pauses the pipeline takes:
//
//   - Pause: a uniform random delay between subjects
//   - Cooldown: a long uniform random pause after a block was detected and
//     the operator acknowledgement did not clear it
//   - Settle: a short fixed pause once the session is clear again
//
// RandomPacer draws delays from a seeded source; tests inject a fixed seed
// through NewWithSource or skip waiting entirely with Nop.
package ratelimit
