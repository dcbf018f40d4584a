// Package config manages the settings of the spacemake-config tool.
//
// These settings describe where configuration documents come from and where
// results go. They are distinct from the spacemake configuration documents
// themselves, which are handled by package configstore.
//
// # Settings File
//
// The default location is ~/.config/spacemake/settings.yaml (see package
// paths). A settings.yaml in the working directory takes precedence.
//
//	version: 1
//	overlays:
//	  - /data/lab/spacemake.yaml
//	  - s3://lab-bucket/spacemake/site.yaml
//	archive_path: ~/.local/share/spacemake/archive.db
//	metrics_textfile: /var/lib/node_exporter/spacemake_config.prom
//	s3:
//	  region: eu-central-1
//	  endpoint: http://minio:9000
//	  path_style: true
//
// Every key can be overridden from the environment with the SPACEMAKE_
// prefix, nested keys joined by underscores (SPACEMAKE_S3_ENDPOINT).
//
// # Loading
//
//	config.Init()
//	s, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// [Load] validates the result; [Validate] returns every problem at once.
package config
