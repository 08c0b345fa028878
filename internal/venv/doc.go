// Package venv models an isolated Python environment on disk.
//
// It knows the directory layout produced by `python -m venv` on each
// platform, computes the environment variables an activation script would
// set, and reads the two text files the bootstrapper cares about: the
// dependency manifest (requirements.txt) and the application's dotenv file.
//
// Activation is computed rather than performed: instead of sourcing
// activate / activate.bat in a shell, the resulting variables are passed
// explicitly to every child process.
package venv
