// Package instagram knows the shape of Instagram profile URLs and how to
// read public profile metadata without a session.
//
// Search results mix profile links with posts, reels and stories;
// CleanProfileURL keeps only the former and canonicalizes them. The
// MetadataClient fetches a profile page through a Cloudflare-tolerant HTTP
// client and returns the og:description line, which looks like:
//
//	714 Followers, 320 Following, 42 Posts - See Instagram photos ...
//
// Parsing counts out of that line is the extract package's job.
package instagram
