package common

// PackageName prefixes metric names.
const PackageName = "dicom_loader"

// Version is set at build time with -ldflags "-X .../common.Version=...".
var Version = "dev"
