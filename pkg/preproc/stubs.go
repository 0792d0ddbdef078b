package preproc

const preludeKey = "\x00prelude"

// prelude carries the declarations shared between headers. It is emitted
// once, before the first known header stub.
const prelude = `typedef unsigned long size_t;
extern void *const NULL;
`

// headerStubs maps system header names to the declarations a typical test
// program needs from them. The stubs are plain C99: the parser sees them as
// ordinary file-scope declarations, so names like printf resolve and names
// like FILE and size_t classify as typedef names.
var headerStubs = map[string]string{
	"stdio.h": `typedef struct __sFILE FILE;
extern FILE *stdin;
extern FILE *stdout;
extern FILE *stderr;
enum { EOF = -1, SEEK_SET = 0, SEEK_CUR = 1, SEEK_END = 2 };
int printf(const char *fmt, ...);
int fprintf(FILE *stream, const char *fmt, ...);
int sprintf(char *s, const char *fmt, ...);
int snprintf(char *s, size_t n, const char *fmt, ...);
int scanf(const char *fmt, ...);
int fscanf(FILE *stream, const char *fmt, ...);
int sscanf(const char *s, const char *fmt, ...);
int puts(const char *s);
int putchar(int c);
int getchar(void);
char *fgets(char *s, int n, FILE *stream);
int fputs(const char *s, FILE *stream);
int fgetc(FILE *stream);
int fputc(int c, FILE *stream);
FILE *fopen(const char *path, const char *mode);
int fclose(FILE *stream);
size_t fread(void *ptr, size_t size, size_t n, FILE *stream);
size_t fwrite(const void *ptr, size_t size, size_t n, FILE *stream);
int fseek(FILE *stream, long offset, int whence);
long ftell(FILE *stream);
void rewind(FILE *stream);
int feof(FILE *stream);
void perror(const char *s);
`,
	"stdlib.h": `void *malloc(size_t size);
void *calloc(size_t n, size_t size);
void *realloc(void *ptr, size_t size);
void free(void *ptr);
void exit(int status);
void abort(void);
int atoi(const char *s);
long atol(const char *s);
double atof(const char *s);
int rand(void);
void srand(unsigned int seed);
int abs(int n);
long labs(long n);
void qsort(void *base, size_t n, size_t size, int (*cmp)(const void *, const void *));
enum { RAND_MAX = 2147483647, EXIT_SUCCESS = 0, EXIT_FAILURE = 1 };
`,
	"string.h": `size_t strlen(const char *s);
int strcmp(const char *a, const char *b);
int strncmp(const char *a, const char *b, size_t n);
char *strcpy(char *dst, const char *src);
char *strncpy(char *dst, const char *src, size_t n);
char *strcat(char *dst, const char *src);
char *strchr(const char *s, int c);
char *strstr(const char *hay, const char *needle);
void *memcpy(void *dst, const void *src, size_t n);
void *memmove(void *dst, const void *src, size_t n);
void *memset(void *s, int c, size_t n);
int memcmp(const void *a, const void *b, size_t n);
`,
	"time.h": `typedef long clock_t;
typedef long time_t;
clock_t clock(void);
time_t time(time_t *t);
enum { CLOCKS_PER_SEC = 1000000 };
`,
	"assert.h": `void assert(int expression);
`,
	"math.h": `double sqrt(double x);
double pow(double base, double exp);
double fabs(double x);
double floor(double x);
double ceil(double x);
double fmod(double x, double y);
`,
	"stdbool.h": `typedef _Bool bool;
enum { false = 0, true = 1 };
`,
	"stdarg.h": `typedef char *va_list;
void va_start(va_list ap, ...);
void va_end(va_list ap);
`,
	"limits.h": `enum {
    CHAR_BIT = 8,
    SCHAR_MIN = -128, SCHAR_MAX = 127, UCHAR_MAX = 255,
    SHRT_MIN = -32768, SHRT_MAX = 32767,
    INT_MIN = -2147483647 - 1, INT_MAX = 2147483647
};
`,
	// stdalign.h only provides the alignas spelling, which the lexer
	// already accepts as a keyword.
	"stdalign.h": "",
	"stddef.h":   "",
	"ctype.h": `int isalpha(int c);
int isdigit(int c);
int isalnum(int c);
int isspace(int c);
int isupper(int c);
int islower(int c);
int toupper(int c);
int tolower(int c);
`,
}
