// ipstack is a command line client for ipstack geolocation API.
//
// It resolves IP addresses and hostnames into geolocation records and
// prints them as JSON to stdout.
//
// Commands
//
// lookup resolves a single address, bulk resolves many addresses with
// a single request (available for paid plans only), check resolves an
// address of this machine. many makes independent single lookups in
// parallel so it works with free plan too.
//
// Configuration
//
// Access key and other settings could be given as flags, environment
// variables or a config file. Config file is TOML if it has .toml
// extension and HJSON otherwise. Flags override config file.
//
//   {
//     access_key: 8743r8dew4398fed3efwewf9843j3f9j
//     http_timeout: 5s
//     rate_limit_interval: 100ms
//     cache: {
//       size: 1000
//       ttl: 10m
//     }
//     params: {
//       language: de
//     }
//   }
//
// Library itself lives in ipstack package.
package main
