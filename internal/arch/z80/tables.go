package z80

var register8 = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var registerPair16 = [4]string{"BC", "DE", "HL", "SP"}

// registerPair16Alt is used by PUSH and POP.
var registerPair16Alt = [4]string{"BC", "DE", "HL", "AF"}

var condition = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// aluOp entries include the separator to the operand.
var aluOp = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

var rotateOp = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

var accumulatorFlagOp = [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}

// interruptMode is indexed by y, the modes repeat for y >= 4.
var interruptMode = [8]string{"0", "0/1", "1", "2", "0", "0/1", "1", "2"}

// blockOp is indexed by y-4 and z.
var blockOp = [4][4]string{
	{"LDI", "CPI", "INI", "OUTI"},
	{"LDD", "CPD", "IND", "OUTD"},
	{"LDIR", "CPIR", "INIR", "OTIR"},
	{"LDDR", "CPDR", "INDR", "OTDR"},
}

// edSpecial is indexed by y for ED prefixed opcodes with x=1, z=7.
var edSpecial = [8]string{"LD I,A", "LD R,A", "LD A,I", "LD A,R", "RRD", "RLD", "NOP", "NOP"}

// bitOp is indexed by x for CB prefixed opcodes, x=0 uses rotateOp.
var bitOp = [4]string{"", "BIT", "RES", "SET"}
