// Command vclab runs the lab's codec components without the HTTP server
// and maintains the server's job history.
//
// Usage:
//
//	vclab rgb2yuv 24 240 0
//	vclab yuv2rgb 148.05 44.1 53.5
//	vclab serpentine '[[1,2,3],[4,5,6],[7,8,9],[10,11,12]]'
//	vclab rle encode 1 1 1 4 4 2 5 4 5 5
//	vclab rle decode 1:3 4:2 2:1
//	vclab dct encode --block 8 '[[...], ...]'
//	vclab dwt 0 1 2 1 5 7
//	vclab demo
//	vclab jobs list --limit 20
//	vclab jobs purge --older-than 720h
//
// Every command accepts --json to print machine-readable output. The jobs
// commands open the SQLite database in DATABASE_DIR (default /database);
// purge asks for confirmation when stdin is a terminal unless --yes is
// given.
package main
