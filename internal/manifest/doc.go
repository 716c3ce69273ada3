// Package manifest decodes the remote profile catalog.
//
// The manifest service returns a JSON document of the form:
//
//	{
//	  "profiles": [
//	    {
//	      "meta": {"name": "Survival", "loader": "Fabric", "version": "1.20.1", "id": 0},
//	      "mods": [
//	        {"name": "Sodium", "url": "https://cdn.modrinth.com/.../sodium.jar",
//	         "version": "0.5.3", "provider": "Modrinth", "size": 1048576}
//	      ]
//	    }
//	  ]
//	}
//
// # Loading
//
//	m, err := manifest.Load(body)
//	if errors.Is(err, manifest.ErrInvalidManifest) {
//	    // malformed document or no profiles
//	}
//
// Fetch combines the HTTP request and Load.
package manifest
