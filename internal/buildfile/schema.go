package buildfile

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a build file may contain.
type fileRoot struct {
	Access     []*accessBlock    `hcl:"access,block"`
	Operations []*operationBlock `hcl:"operation,block"`
}

// accessBlock lists the directories operations may read from and write to.
type accessBlock struct {
	Read  []string `hcl:"read,optional"`
	Write []string `hcl:"write,optional"`
}

// operationBlock declares a single build action.
type operationBlock struct {
	Title            string         `hcl:"title,label"`
	WorkingDirectory string         `hcl:"working_directory"`
	Executable       string         `hcl:"executable"`
	Arguments        hcl.Expression `hcl:"arguments,optional"`
	Inputs           []string       `hcl:"inputs,optional"`
	Outputs          []string       `hcl:"outputs,optional"`
}
