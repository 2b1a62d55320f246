// Package buildfile loads operation declarations from HCL build files.
//
// A build file holds any number of access and operation blocks:
//
//	access {
//	  read  = ["${root}/src/"]
//	  write = ["${root}/out/"]
//	}
//
//	operation "compile a.c" {
//	  working_directory = "${root}/"
//	  executable        = "/usr/bin/cc"
//	  arguments         = ["-c", "src/a.c", "-o", "out/a.o"]
//	  inputs            = ["src/a.c"]
//	  outputs           = ["out/a.o"]
//	}
//
// root is the absolute directory of the file being decoded and env maps the
// process environment. The functions concat, format, join, upper and lower
// are available in expressions.
package buildfile
